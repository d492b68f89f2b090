package dto

import (
	"net/http"

	"github.com/treeofhope/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>

// General error codes
const (
	ErrCodeInternal = "ERR_INTERNAL"
	ErrCodeUpstream = "ERR_UPSTREAM"
)

// Input error codes
const (
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthenticated = "ERR_UNAUTHENTICATED"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeForbidden       = "ERR_FORBIDDEN"
	ErrCodeTokenExpired    = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps response error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeUpstream: http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeInvalidSignature: http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,

	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenInvalid:    http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInvalidState:        http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// domainCodeMapping maps domain error codes to response error codes
var domainCodeMapping = map[string]string{
	shared.CodeNotFound:         ErrCodeNotFound,
	shared.CodeAlreadyExists:    ErrCodeAlreadyExists,
	shared.CodeValidation:       ErrCodeValidation,
	shared.CodeUnauthenticated:  ErrCodeUnauthenticated,
	shared.CodeUnauthorized:     ErrCodeUnauthorized,
	shared.CodeForbidden:        ErrCodeForbidden,
	shared.CodeInvalidState:     ErrCodeInvalidState,
	shared.CodeUpstreamFailure:  ErrCodeUpstream,
	shared.CodeConcurrencyError: ErrCodeConcurrencyConflict,
}

// GetHTTPStatus returns the HTTP status for a response error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromDomainCode converts a domain error code to its response error code.
// Unknown codes map to ERR_INTERNAL.
func FromDomainCode(code string) string {
	if mapped, ok := domainCodeMapping[code]; ok {
		return mapped
	}
	return ErrCodeInternal
}
