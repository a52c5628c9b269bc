package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("authentication failed")
	ErrGateway    = errors.New("upstream gateway error")
	ErrStore      = errors.New("store error")
	ErrNotFound   = errors.New("resource not found")
	ErrInternal   = errors.New("internal error")
)

// AppError represents an application error with HTTP status and error code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code string, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Common error constructors.

// Validation creates a validation error. Validation errors are surfaced to
// the caller immediately and never retried.
func Validation(message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        ErrValidation,
	}
}

// Auth creates a credential-resolution error. The caller must re-supply
// credentials; there is no automatic retry.
func Auth(message string, err error) *AppError {
	return &AppError{
		Code:       "AUTH_ERROR",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Err:        errors.Join(ErrAuth, err),
	}
}

// Gateway creates an upstream API error carrying the upstream detail.
func Gateway(message string, err error) *AppError {
	return &AppError{
		Code:       "GATEWAY_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Err:        errors.Join(ErrGateway, err),
	}
}

// Store creates a gallery persistence error. Store errors are soft: reads
// fall back to an empty gallery and writes are logged as warnings.
func Store(message string, err error) *AppError {
	return &AppError{
		Code:       "STORE_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        errors.Join(ErrStore, err),
	}
}

// NotFound creates a not found error.
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// Internal creates an internal error.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// GetStatusCode returns the appropriate HTTP status code for an error.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
