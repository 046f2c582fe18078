package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	// Prices are stored as decimal(10,2).
	priceMaxDigits     = 10
	priceDecimalPlaces = 2
)

var (
	minPrice        = decimal.New(1, -priceDecimalPlaces)
	priceUpperBound = decimal.New(1, priceMaxDigits-priceDecimalPlaces)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

type CustomValidator struct {
	validator *validator.Validate
}

// ValidationError carries field level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewFieldError builds a ValidationError for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Decimals are validated through their canonical string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterValidation("price", validatePrice)
	v.RegisterValidation("username", validateUsername)

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Check validates i and returns a *ValidationError listing every failing
// field, or nil.
func (cv *CustomValidator) Check(i interface{}) error {
	err := cv.Validate(i)
	if err == nil {
		return nil
	}
	return &ValidationError{Fields: cv.FormatValidationErrors(err)}
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "price":
				errors[field] = fmt.Sprintf("%s must be at least %s with at most %d digits and %d decimal places",
					field, minPrice.StringFixed(priceDecimalPlaces), priceMaxDigits, priceDecimalPlaces)
			case "username":
				errors[field] = field + " may contain only letters, numbers, and @/./+/-/_ characters"
			default:
				errors[field] = field + " is invalid"
			}
		}
		return errors
	}

	errors["non_field_errors"] = "invalid input"
	return errors
}

func validatePrice(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return ValidPrice(d)
}

// ValidPrice reports whether d fits decimal(10,2) and is at least 0.01.
func ValidPrice(d decimal.Decimal) bool {
	if d.LessThan(minPrice) {
		return false
	}
	if !d.Round(priceDecimalPlaces).Equal(d) {
		return false
	}
	return d.LessThan(priceUpperBound)
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}
