package errs

import (
	"net/http"
)

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
//
// Parameters:
//   - message: text to send to client
//   - override: a flag the error handler can use to decide whether
//     to replace the message.
//
// The gateway returns it whenever the database rejects the Basic
// credentials of a request. The caller is responsible for the
// WWW-Authenticate challenge header.
func NewUnauthorizedError(message string, override bool) *HTTPError {
	return &HTTPError{
		// http.StatusText(401) => "Unauthorized" => "UNAUTHORIZED"
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusUnauthorized)),
		Message:  message,
		Status:   http.StatusUnauthorized,
		Override: override,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
//
// code, when not nil, replaces the default "NOT_FOUND".
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	// Default code: "NOT_FOUND"
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))

	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewNotAcceptableError creates a 406 Not Acceptable HTTPError.
//
// Used when a stored procedure accepted the input but reported that
// nothing was created (a zero or missing result id).
func NewNotAcceptableError(message string, override bool) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotAcceptable)),
		Message:  message,
		Status:   http.StatusNotAcceptable,
		Override: override,
	}
}

// NewUnprocessableEntityError creates a 422 Unprocessable Entity HTTPError.
//
// Path, query and body parameters that fail to parse or violate their
// constraints end up here, together with per-field details:
//
//	{ "field": "bom_id", "error": "must be at least 0" }
func NewUnprocessableEntityError(message string, override bool, errors []FieldError) *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusUnprocessableEntity)),
		Message:  message,
		Status:   http.StatusUnprocessableEntity,
		Override: override,
		Errors:   errors,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// Note:
//   - message is the generic status text, not the real internal error message.
//   - Override is false by default.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// NewDatabaseError creates a 500 HTTPError whose message is the database's
// own error text.
//
// ERP clients show procedure exceptions to operators verbatim, so unlike
// NewInternalServerError the message is passed through untouched.
// code is a machine-friendly code such as "REPAIR_ERROR".
func NewDatabaseError(message string, code string) *HTTPError {
	return &HTTPError{
		Code:     code,
		Message:  message,
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}
