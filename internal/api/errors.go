package api

import (
	"errors"
	"fmt"

	"github.com/hiverapp/hiver/internal/relationship"
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
)

// Application error codes
const (
	ErrServerError     = -32000
	ErrUnauthenticated = -32001
	ErrForbidden       = -32003
	ErrNotFound        = -32004
	ErrConflict        = -32009
)

// mapError translates a handler error into a JSON-RPC error code and
// message. Domain errors keep their own message; anything unrecognized is
// reported as a generic server error.
func mapError(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message
	}

	switch {
	case errors.Is(err, relationship.ErrSelfReference):
		return ErrInvalidParams, relationship.ErrSelfReference.Error()
	case errors.Is(err, relationship.ErrUnauthenticated):
		return ErrUnauthenticated, relationship.ErrUnauthenticated.Error()
	case errors.Is(err, relationship.ErrForbidden):
		return ErrForbidden, relationship.ErrForbidden.Error()
	case errors.Is(err, relationship.ErrConflict):
		return ErrConflict, relationship.ErrConflict.Error()
	case errors.Is(err, relationship.ErrNotFound):
		return ErrNotFound, relationship.ErrNotFound.Error()
	case errors.Is(err, relationship.ErrStoreUnavailable):
		return ErrServerError, relationship.ErrStoreUnavailable.Error()
	default:
		return ErrServerError, "Server error"
	}
}
