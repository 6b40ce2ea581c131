package errs

import (
	"net/http"
)

func newHTTPError(status int, message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(status))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   status,
		Override: override,
	}
}

// NewBadRequestError creates a 400 error. code defaults to BAD_REQUEST;
// errors carries per-field validation failures.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	err := newHTTPError(http.StatusBadRequest, message, override, code)
	err.Errors = errors
	err.Action = action
	return err
}

// NewNotFoundError creates a 404 error. code defaults to NOT_FOUND.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, override, code)
}

// NewTooManyRequestsError creates a 429 error asking the client to retry later.
func NewTooManyRequestsError(message string) *HTTPError {
	err := newHTTPError(http.StatusTooManyRequests, message, true, nil)
	err.Action = &Action{
		Type:    ActionTypeRetry,
		Message: "Retry the request later",
	}
	return err
}

// NewInternalServerError creates a generic 500 error. The underlying
// cause is logged, never sent to the client.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false, nil)
}

// ValidationError wraps an arbitrary validation failure into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}
