// Package apperror defines the error taxonomy shared by services and
// handlers.  Services return *AppError values; handlers translate the Type
// into an HTTP status and write {"message": ...} to the caller.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// TypeValidation indicates malformed or missing input
	TypeValidation ErrorType = "VALIDATION"

	// TypeConflict indicates a uniqueness violation
	TypeConflict ErrorType = "CONFLICT"

	// TypeNotFound indicates a referenced entity does not exist
	TypeNotFound ErrorType = "NOT_FOUND"

	// TypeUnauthorized indicates a missing, invalid or expired session
	TypeUnauthorized ErrorType = "UNAUTHORIZED"

	// TypeForbidden indicates an authenticated caller acting on someone else's data
	TypeForbidden ErrorType = "FORBIDDEN"

	// TypeInternal indicates an unexpected store or runtime failure
	TypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error type onto an HTTP status code.
func (e *AppError) Status() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeConflict:
		return http.StatusConflict
	case TypeNotFound:
		return http.StatusNotFound
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *AppError {
	return &AppError{Type: TypeValidation, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Type: TypeConflict, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Type: TypeNotFound, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Type: TypeUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Type: TypeForbidden, Message: message}
}

// Internal wraps an unexpected failure.  The message is what the caller
// sees; err is only logged.
func Internal(message string, err error) *AppError {
	return &AppError{Type: TypeInternal, Message: message, Err: err}
}

// As extracts an *AppError from err.  Anything that is not already an
// AppError is reported as an internal error.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("Server error", err)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Type == t
}
