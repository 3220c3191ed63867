package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/deppfellow/erp-gateway/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request types that know how to validate
// themselves.
//
// Typical pattern:
//   - Define a request struct with binding tags (`param:"bom_id"`) and
//     validator tags (`validate:"min=0"`)
//   - Implement Validate() error that runs the shared validator
//   - Return validator.ValidationErrors, or CustomValidationErrors for rules
//     tags cannot express (optional parameters)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// Add appends an error for field.
func (c *CustomValidationErrors) Add(field, message string) {
	*c = append(*c, CustomValidationError{Field: field, Message: message})
}

// Err returns c as an error, or nil when it is empty.
func (c CustomValidationErrors) Err() error {
	if len(c) == 0 {
		return nil
	}
	return c
}

// CheckLength records an error when a present optional string has fewer
// than min or more than max characters.
func (c *CustomValidationErrors) CheckLength(field string, p OptionalString, min, max int) {
	if !p.Set {
		return
	}
	n := utf8.RuneCountInString(p.Value)
	switch {
	case n < min:
		c.Add(field, fmt.Sprintf("must be at least %d characters", min))
	case n > max:
		c.Add(field, fmt.Sprintf("must not exceed %d characters", max))
	}
}

// CheckMin records an error when a present optional integer is below min.
func (c *CustomValidationErrors) CheckMin(field string, p OptionalInt, min int64) {
	if p.Set && p.Value < min {
		c.Add(field, fmt.Sprintf("must be at least %d", min))
	}
}

// New returns a validator that reports fields by their wire names, taken
// from the param, query or json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"param", "query", "json"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	return v
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) populates the struct from path, query and body.
//  2. payload.Validate() applies validation rules.
//  3. Either failure returns *errs.HTTPError (422) with field-level errors.
//
// NOTE: c.Bind expects a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return bindError(c, err)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewUnprocessableEntityError(msg, true, fieldErrors)
	}

	return nil
}

// bindError converts an echo binding failure into a 422, naming the
// parameter that could not be converted when it can be identified.
func bindError(c echo.Context, err error) error {
	var fieldErrors []errs.FieldError

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: typeErr.Field,
			Error: fmt.Sprintf("must be of type %s", typeErr.Type.Kind()),
		})
	case errors.As(err, &syntaxErr):
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: "body",
			Error: "must be valid JSON",
		})
	default:
		if failure, ok := parseFailureOf(err); ok {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: lookupParam(c, failure.value),
				Error: failure.message,
			})
		}
	}

	if fieldErrors == nil {
		message := "Invalid request parameters"
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			}
		}
		return errs.NewUnprocessableEntityError(message, false, nil)
	}

	return errs.NewUnprocessableEntityError("Validation failed", true, fieldErrors)
}

// lookupParam finds which path or query parameter carried value.
func lookupParam(c echo.Context, value string) string {
	names := c.ParamNames()
	values := c.ParamValues()
	for i, name := range names {
		if i < len(values) && values[i] == value {
			return name
		}
	}

	for name, queryValues := range c.QueryParams() {
		for _, queryValue := range queryValues {
			if queryValue == value {
				return name
			}
		}
	}

	return "request"
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "request", Error: err.Error()}}
	}

	for _, err := range validationErrors {
		field := strings.ToLower(err.Field())
		var msg string

		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// For strings min is a length, for numbers a value.
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
