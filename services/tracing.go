package services

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("oncounter-billing/services")
