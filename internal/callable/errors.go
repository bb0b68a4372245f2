package callable

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the canonical status carried in a callable error response.
type Code string

const (
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodePermissionDenied   Code = "PERMISSION_DENIED"
	CodeInternal           Code = "INTERNAL"
)

var httpStatus = map[Code]int{
	CodeInvalidArgument:    http.StatusBadRequest,
	CodeFailedPrecondition: http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeUnauthenticated:    http.StatusUnauthorized,
	CodePermissionDenied:   http.StatusForbidden,
	CodeInternal:           http.StatusInternalServerError,
}

// Error is an error that is safe to return to a callable client.
type Error struct {
	Code    Code   `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the code to the status line the callable protocol expects.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func InvalidArgument(message string) *Error {
	return NewError(CodeInvalidArgument, message)
}

func Unauthenticated(message string) *Error {
	return NewError(CodeUnauthenticated, message)
}

// Internal hides cause from the client behind a generic message.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "INTERNAL", cause: cause}
}

// AsError returns err as a client-safe *Error, replacing anything unclassified with Internal.
func AsError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return Internal(err)
}
