package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeDestinationDisconnected is used when a sync targets a disconnected store
	ErrCodeDestinationDisconnected = "ERR_DESTINATION_DISCONNECTED"
)

// Upstream storefront error codes
const (
	// ErrCodeRemoteFailed is used when a storefront request fails
	ErrCodeRemoteFailed = "ERR_REMOTE_FAILED"
	// ErrCodeRemoteAuthFailed is used when a storefront rejects the credentials
	ErrCodeRemoteAuthFailed = "ERR_REMOTE_AUTH_FAILED"
	// ErrCodeRemoteRateLimited is used when a storefront throttles us
	ErrCodeRemoteRateLimited = "ERR_REMOTE_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeInvalidState:            http.StatusUnprocessableEntity,
	ErrCodeDestinationDisconnected: http.StatusUnprocessableEntity,

	ErrCodeRemoteFailed:      http.StatusBadGateway,
	ErrCodeRemoteAuthFailed:  http.StatusBadGateway,
	ErrCodeRemoteRateLimited: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to the API format. Every
// code the aggregates emit must appear here, otherwise the client sees a 500.
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":     ErrCodeNotFound,
	"INVALID_STATE": ErrCodeInvalidState,

	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_TITLE":        ErrCodeInvalidInput,
	"INVALID_PRICE":        ErrCodeInvalidInput,
	"INVALID_QUANTITY":     ErrCodeInvalidInput,
	"INVALID_VARIANT":      ErrCodeInvalidInput,
	"INVALID_OPTION":       ErrCodeInvalidInput,
	"INVALID_DESTINATION":  ErrCodeInvalidInput,
	"INVALID_NOTIFICATION": ErrCodeInvalidInput,
	"DUPLICATE_SKU":        ErrCodeInvalidInput,
	"DUPLICATE_OPTION":     ErrCodeInvalidInput,
	"NO_VARIANTS":          ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the API format.
// If the code is already in the API format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
