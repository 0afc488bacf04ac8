package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/oncounter-billing/utils"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrBadRequest          = errors.New("bad request")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account is not active")
	ErrMalformedIdentifier = utils.ErrMalformedIdentifier
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrTimeout             = errors.New("transaction timed out")
	ErrInvalidToken        = utils.ErrInvalidToken
	ErrWrongTokenType      = utils.ErrWrongTokenType
)

// ValidationError reports the first field that failed validation.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// lookupErr turns gorm's miss into ErrNotFound and leaves other errors alone.
func lookupErr(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(kind, id)
	}
	return err
}

// timeoutErr maps a failure caused by the expired transaction context to
// ErrTimeout. Domain errors pass through untouched.
func timeoutErr(ctx context.Context, err error) error {
	if err == nil || isDomainErr(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func isDomainErr(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountInactive) ||
		errors.Is(err, ErrMalformedIdentifier)
}

// uniqueWriteErr names the offending column when a unique index rejects a
// write that raced past the pre-check. The translated driver error does not
// carry the index, so recheck repeats the lookup inside the same transaction.
func uniqueWriteErr(err error, recheck func() error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return writeErr(err)
	}
	var verr *ValidationError
	if cerr := recheck(); errors.As(cerr, &verr) {
		return verr
	}
	return writeErr(err)
}

// writeErr converts constraint violations that slipped past the pre-checks.
func writeErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return invalid("non_field_errors", "duplicate")
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return invalid("non_field_errors", "reference")
	}
	return err
}
