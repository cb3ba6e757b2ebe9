package dto

import (
	"net/http"

	"github.com/comufarm/backend/internal/domain/shared"
)

// Codes raised by the HTTP layer itself. Domain codes live in shared.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeTooManyStreams  = "MAX_CONNECTIONS_REACHED"
)

var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:          http.StatusNotFound,
	shared.CodeOutOfWindow:       http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeConflict:          http.StatusConflict,
	shared.CodeValidation:        http.StatusBadRequest,
	shared.CodeTimeout:           http.StatusGatewayTimeout,
	shared.CodeUnavailable:       http.StatusServiceUnavailable,
	shared.CodeUnauthorized:      http.StatusUnauthorized,
	shared.CodeForbidden:         http.StatusForbidden,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeTooManyStreams:  http.StatusServiceUnavailable,
}

// HTTPStatus returns the status for an error code, 500 when unknown
func HTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryableCode reports whether a request that failed with code may be sent again
func IsRetryableCode(code string) bool {
	switch code {
	case shared.CodeTimeout, shared.CodeUnavailable, ErrCodeRateLimited, ErrCodeTooManyStreams:
		return true
	}
	return false
}
