// Package errors defines the coded error taxonomy shared by services,
// middleware and the HTTP layer. Every failure that reaches a response is
// one of these; anything else is rendered as an internal error with a
// fixed safe message.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Code classifies a service error.
type Code string

const (
	CodeValidation      Code = "validation_failed"
	CodeNotFound        Code = "not_found"
	CodeUnauthenticated Code = "unauthenticated"
	CodeForbidden       Code = "forbidden"
	CodeConflict        Code = "conflict"
	CodeInternal        Code = "internal"
)

// DefaultMessage is rendered for internal errors so that internal detail
// never leaks to a client.
const DefaultMessage = "Oh no, something went wrong!"

// ServiceError carries a code, a client-safe message and an optional
// wrapped cause.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	Err        error
	details    map[string]interface{}
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a key/value pair for logging. Details are never
// rendered to clients.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.details == nil {
		e.details = make(map[string]interface{})
	}
	e.details[key] = value
	return e
}

// Details returns the attached diagnostic fields.
func (e *ServiceError) Details() map[string]interface{} { return e.details }

// ClientMessage returns the message safe to render. Internal errors always
// collapse to DefaultMessage.
func (e *ServiceError) ClientMessage() string {
	if e.Code == CodeInternal || e.Message == "" {
		return DefaultMessage
	}
	return e.Message
}

// Validation builds a client error from one or more violation messages,
// joined in declaration order.
func Validation(violations ...string) *ServiceError {
	return &ServiceError{
		Code:       CodeValidation,
		Message:    strings.Join(violations, ","),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NotFound reports an absent resource.
func NotFound(resource string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("Cannot find that %s!", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthenticated reports a request with no resolved identity.
func Unauthenticated(message string) *ServiceError {
	if message == "" {
		message = "You must be signed in first!"
	}
	return &ServiceError{
		Code:       CodeUnauthenticated,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden reports an identity acting on a resource it does not own.
func Forbidden(message string) *ServiceError {
	if message == "" {
		message = "You do not have permission to do that!"
	}
	return &ServiceError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict reports a uniqueness violation such as a taken username.
func Conflict(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// Internal wraps an unexpected failure.
func Internal(err error) *ServiceError {
	return &ServiceError{
		Code:       CodeInternal,
		Message:    DefaultMessage,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// As extracts a ServiceError from an error chain.
func As(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// StatusOf resolves the HTTP status for any error, defaulting to 500.
func StatusOf(err error) int {
	if svcErr, ok := As(err); ok && svcErr.HTTPStatus != 0 {
		return svcErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether err is a not-found service error.
func IsNotFound(err error) bool {
	svcErr, ok := As(err)
	return ok && svcErr.Code == CodeNotFound
}

// IsValidation reports whether err is a validation service error.
func IsValidation(err error) bool {
	svcErr, ok := As(err)
	return ok && svcErr.Code == CodeValidation
}
