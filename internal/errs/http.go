package errs

import "strings"

// FieldError represents a field-level parameter error.
// Example:
//
//	{ "field": "bom_id", "error": "must be a valid integer" }
type FieldError struct {
	// Field is the parameter name as the client sent it (e.g. "date_start").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeAuthenticate tells the client to ask the operator for
	// database credentials again. Value holds the auth scheme.
	ActionTypeAuthenticate ActionType = "authenticate"
)

// Action describes an optional "what the client should do next" instruction.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error type every handler failure is converted into.
//
// It implements the `error` interface via Error() and is serialized
// directly to JSON by the global error handler.
// Fields:
//   - Code: machine-friendly error code (e.g. "NOT_FOUND", "REPAIR_ERROR").
//   - Message: human-friendly message, or raw database text for driver errors.
//   - Status: HTTP status code.
//   - Override: lets the error handler replace the message.
//   - Errors: per-parameter errors (422 responses).
//   - Action: client instruction (optional).
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`

	Action *Action `json:"action"`
}

// Error returns the Message, so logging the error shows what the client saw.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also an *HTTPError.
//
// It only compares the type, not Code or Status.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// WithAction returns a copy of this HTTPError carrying the given action.
func (e *HTTPError) WithAction(action *Action) *HTTPError {
	copied := e.WithMessage(e.Message)
	copied.Action = action
	return copied
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Unprocessable Entity" -> "UNPROCESSABLE_ENTITY"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
