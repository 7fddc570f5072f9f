package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation        ErrorType = "VALIDATION"
	ErrorTypeNotFound          ErrorType = "NOT_FOUND"
	ErrorTypeConflict          ErrorType = "CONFLICT"
	ErrorTypeUnauthorized      ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden         ErrorType = "FORBIDDEN"
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"

	// Application errors
	ErrorTypeTransactionFailed ErrorType = "TRANSACTION_FAILED"
	ErrorTypeRecoveryEnqueue   ErrorType = "RECOVERY_ENQUEUE_FAILED"
	ErrorTypeInternal          ErrorType = "INTERNAL"

	// Infrastructure errors
	ErrorTypeDatabase       ErrorType = "DATABASE"
	ErrorTypeUnknownType    ErrorType = "UNKNOWN_TYPE"
	ErrorTypeCorruptPayload ErrorType = "CORRUPT_PAYLOAD"
)

// AppError is the single error currency across service and storage layers.
// The HTTP status is carried on the error so the outermost handler can map
// it without a second taxonomy.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error for the given entity kind and id
func NewNotFoundError(kind, id string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s %s not found", kind, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error. Version-condition failures on
// conditional writes surface as this type and are the only errors the
// services retry.
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewUnauthorizedError creates an unauthorized error: the actor identity was
// missing or could not be resolved while evaluating permissions.
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error: the actor was resolvable but
// permission evaluation denied the operation.
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewInvalidTransitionError creates an error for an illegal status transition.
// Always a client error, never retried.
func NewInvalidTransitionError(from, to string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidTransition,
		Message:    fmt.Sprintf("illegal status transition from %s to %s", from, to),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewTransactionFailedError is returned once conditional-write retries are
// exhausted. Retryable from the caller's point of view.
func NewTransactionFailedError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransactionFailed,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewRecoveryEnqueueError is terminal: there is no fallback path behind the
// recovery queue.
func NewRecoveryEnqueueError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeRecoveryEnqueue,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    fmt.Sprintf("database operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewUnknownTypeError is a data-integrity fault: a storage record carries a
// type tag no registered entry variant matches.
func NewUnknownTypeError(typeTag string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownType,
		Message:    fmt.Sprintf("unknown entry type %q", typeTag),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewCorruptPayloadError is a data-integrity fault: a stored payload failed
// decompression or deserialization.
func NewCorruptPayloadError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeCorruptPayload,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsConflict checks if an error is a version-conflict error
func IsConflict(err error) bool {
	return IsType(err, ErrorTypeConflict)
}

// IsForbidden checks if an error is a forbidden error
func IsForbidden(err error) bool {
	return IsType(err, ErrorTypeForbidden)
}
