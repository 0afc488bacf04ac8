package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// phonePattern is +<country code>-<subscriber number>.
var phonePattern = regexp.MustCompile(`^\+\d{1,3}-\d{9,15}$`)

// maxMoney is the first value that no longer fits decimal(10,2).
var maxMoney = decimal.New(1, 8)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// validateStruct returns the first failing field as a *ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return invalid(fe.Field(), reasonFor(fe.Tag()))
	}
	return err
}

func reasonFor(tag string) string {
	switch tag {
	case "phone", "email":
		return "format"
	case "required":
		return "required"
	case "max", "min", "gte", "lte", "gt", "lt":
		return "range"
	default:
		return tag
	}
}

// validateMoney enforces decimal(10,2): non-negative, two fractional digits,
// ten digits overall.
func validateMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid(field, "negative")
	}
	if !d.Equal(d.Round(2)) {
		return invalid(field, "precision")
	}
	if d.GreaterThanOrEqual(maxMoney) {
		return invalid(field, "range")
	}
	return nil
}

// ensureUnique fails with a ValidationError on column when another row of
// model already holds value. exceptKey skips the row being updated.
func ensureUnique(tx *gorm.DB, model interface{}, column, value, keyColumn string, exceptKey interface{}) error {
	q := tx.Model(model).Where(column+" = ?", value)
	if exceptKey != nil {
		q = q.Where(keyColumn+" <> ?", exceptKey)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return invalid(column, "unique")
	}
	return nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
