// Package dto defines API request/response types and error handling.
//
// This package is the API contract layer: request types carry path/query/json
// struct tags for parameter binding, response types use snake_case JSON, and
// errors are structured values with an HTTP status and a machine-readable
// code. It is fully self-contained; conversion from domain types happens in
// the handlers package.
package dto

import (
	"fmt"
	"maps"
	"net/http"
)

// ErrorCode defines specific error types for the API.
type ErrorCode string

const (
	// ErrorCodeValidationFailed is returned when input data fails validation.
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrorCodeMissingField is returned when a required field is missing.
	ErrorCodeMissingField ErrorCode = "MISSING_FIELD"

	// ErrorCodeNotFound is returned when a file or resource does not exist.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrorCodeAmbiguousPath is returned when a file operation hits a folder
	// or the other way around.
	ErrorCodeAmbiguousPath ErrorCode = "AMBIGUOUS_PATH"
	// ErrorCodeVersionConflict is returned when a write loses the
	// compare-and-swap on the expected content version.
	ErrorCodeVersionConflict ErrorCode = "VERSION_CONFLICT"
	// ErrorCodeWriteRejected is returned when the remote refuses a write for
	// any reason other than a version conflict.
	ErrorCodeWriteRejected ErrorCode = "WRITE_REJECTED"
	// ErrorCodeRemoteUnavailable is returned when the content host cannot be
	// reached or answers outside its contract.
	ErrorCodeRemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE"
	// ErrorCodeBackendError is returned when the record backend fails.
	ErrorCodeBackendError ErrorCode = "BACKEND_ERROR"

	// ErrorCodeUnauthorized is returned when authentication is missing or invalid.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeInternal is returned when an unexpected server error occurs.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetails defines the structured error information in a response.
type ErrorDetails struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error   ErrorDetails   `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorWithStatus is an error that includes an HTTP status code and error code.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Code() ErrorCode
	Details() map[string]any
}

// APIError is a concrete error type with status code and optional details.
type APIError struct {
	statusCode int
	code       ErrorCode
	message    string
	details    map[string]any
	wrappedErr error
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, code ErrorCode, message string) *APIError {
	return &APIError{
		statusCode: statusCode,
		code:       code,
		message:    message,
		details:    make(map[string]any),
	}
}

// WithDetails adds details to the error.
func (e *APIError) WithDetails(details map[string]any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	maps.Copy(e.details, details)
	return e
}

// WithDetail adds a single detail to the error.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Wrap wraps an underlying error.
func (e *APIError) Wrap(err error) *APIError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// StatusCode returns the HTTP status code.
func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Code returns the error code.
func (e *APIError) Code() ErrorCode {
	return e.code
}

// Details returns additional error details.
func (e *APIError) Details() map[string]any {
	return e.details
}

// Unwrap returns the wrapped error if any.
func (e *APIError) Unwrap() error {
	return e.wrappedErr
}

// Predefined error constructors for common cases

// NotFound creates a 404 Not Found error.
func NotFound(resource string) *APIError {
	return NewAPIError(http.StatusNotFound, ErrorCodeNotFound, resource+" not found")
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeValidationFailed, message)
}

// MissingField creates a 400 Bad Request error for a missing field.
func MissingField(fieldName string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeMissingField, "Missing required field: "+fieldName)
}

// Unauthorized returns a 401 Unauthorized error.
func Unauthorized() *APIError {
	return NewAPIError(http.StatusUnauthorized, ErrorCodeUnauthorized, "Unauthorized")
}

// Internal returns a 500 Internal Server Error.
func Internal(message string) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrorCodeInternal, message)
}

// InternalWithError creates a 500 error wrapping an underlying error.
func InternalWithError(message string, err error) *APIError {
	return Internal(message).Wrap(err)
}

// VersionConflict creates a 409 error for a lost compare-and-swap.
func VersionConflict(path string) *APIError {
	return NewAPIError(http.StatusConflict, ErrorCodeVersionConflict, "file changed since it was read").
		WithDetail("path", path)
}

// AmbiguousPath creates a 400 error for a file/folder kind mismatch.
func AmbiguousPath(path string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrorCodeAmbiguousPath, "path does not name the expected kind of entry").
		WithDetail("path", path)
}

// WriteRejected creates a 422 error for a refused write.
func WriteRejected(message string) *APIError {
	return NewAPIError(http.StatusUnprocessableEntity, ErrorCodeWriteRejected, message)
}

// RemoteUnavailable creates a 502 error for content-host failures.
func RemoteUnavailable(message string) *APIError {
	return NewAPIError(http.StatusBadGateway, ErrorCodeRemoteUnavailable, message)
}

// BackendError creates an error relaying a record-backend failure.
func BackendError(status int, message string) *APIError {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return NewAPIError(status, ErrorCodeBackendError, message)
}
