package shared

import (
	"context"
	"errors"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same error code, so callers can
// match a detailed error against the sentinel values below with errors.Is.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeOutOfWindow       = "OUT_OF_WINDOW"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeUnavailable       = "UNAVAILABLE"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrOutOfWindow       = NewDomainError(CodeOutOfWindow, "Requested date is outside the supply window")
	ErrInsufficientStock = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrConflict          = NewDomainError(CodeConflict, "Request conflicts with an existing one")
	ErrValidation        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrTimeout           = NewDomainError(CodeTimeout, "Operation timed out")
	ErrUnavailable       = NewDomainError(CodeUnavailable, "Storage is temporarily unavailable")
	ErrUnauthorized      = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden         = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
)

// IsRetryable reports whether err is a transient failure that may succeed
// when the same idempotent operation is attempted again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}

// CodeOf extracts the domain error code from err, or "" when err is not a
// DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
