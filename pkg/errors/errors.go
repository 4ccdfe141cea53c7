package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes an application error and decides its HTTP mapping.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeProcessing ErrorType = "processing"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeNetwork    ErrorType = "network"
)

var statusByType = map[ErrorType]int{
	ErrorTypeValidation: http.StatusBadRequest,
	ErrorTypeProcessing: http.StatusUnprocessableEntity,
	ErrorTypeNotFound:   http.StatusNotFound,
	ErrorTypeConflict:   http.StatusConflict,
	ErrorTypeInternal:   http.StatusInternalServerError,
	ErrorTypeNetwork:    http.StatusServiceUnavailable,
}

// AppError is a structured application error carrying its category, an HTTP
// status and an optional wrapped cause.
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(t ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: statusByType[t],
		Cause:      cause,
	}
}

// NewValidationError creates a bad-request error, optionally with a detail
// string surfaced to the client.
func NewValidationError(message string, details ...string) *AppError {
	e := newError(ErrorTypeValidation, message, nil)
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// NewProcessingError creates an unprocessable-entity error for work that was
// accepted but could not be completed.
func NewProcessingError(message string, cause error) *AppError {
	return newError(ErrorTypeProcessing, message, cause)
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(message string) *AppError {
	return newError(ErrorTypeNotFound, message, nil)
}

// NewConflictError creates a conflict error for operations rejected because
// of the resource's current state.
func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, message, nil)
}

// NewInternalError creates an internal server error.
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, message, cause)
}

// NewNetworkError creates a service-unavailable error for upstream failures.
func NewNetworkError(message string, cause error) *AppError {
	return newError(ErrorTypeNetwork, message, cause)
}

// IsType reports whether err is, or wraps, an AppError of the given type.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode returns the HTTP status for err, defaulting to 500 for
// errors that are not AppErrors.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
