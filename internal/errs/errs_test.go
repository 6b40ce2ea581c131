package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBadRequestError(t *testing.T) {
	fields := []FieldError{{Field: "title", Error: "is required"}}

	err := NewBadRequestError("Validation failed", true, nil, fields, nil)
	assert.Equal(t, "BAD_REQUEST", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, fields, err.Errors)
	assert.True(t, err.Override)

	code := "EVENT_INVALID"
	err = NewBadRequestError("bad", false, &code, nil, nil)
	assert.Equal(t, "EVENT_INVALID", err.Code)
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", NewNotFoundError("missing", false, nil).Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", NewInternalServerError().Code)
	assert.Equal(t, "Internal Server Error", NewInternalServerError().Message)

	tooMany := NewTooManyRequestsError("slow down")
	assert.Equal(t, http.StatusTooManyRequests, tooMany.Status)
	assert.Equal(t, "TOO_MANY_REQUESTS", tooMany.Code)
	if assert.NotNil(t, tooMany.Action) {
		assert.Equal(t, ActionTypeRetry, tooMany.Action.Type)
	}

	validation := ValidationError(errors.New("title too short"))
	assert.Equal(t, "Validation failed: title too short", validation.Message)
}

func TestHTTPError_IsAndAs(t *testing.T) {
	wrapped := fmt.Errorf("create event: %w", NewNotFoundError("missing", false, nil))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))

	var httpErr *HTTPError
	assert.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "missing", wrapped.(interface{ Unwrap() error }).Unwrap().Error())
}

func TestWithMessage_DoesNotMutate(t *testing.T) {
	base := NewBadRequestError("original", false, nil, nil, nil)
	copied := base.WithMessage("changed")

	assert.Equal(t, "original", base.Message)
	assert.Equal(t, "changed", copied.Message)
	assert.Equal(t, base.Code, copied.Code)
}

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "SERVICE_UNAVAILABLE", MakeUpperCaseWithUnderscores("Service Unavailable"))
}
