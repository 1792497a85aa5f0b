package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
)

// Resource error codes
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeUploadNotFound = "UPLOAD_NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	// ErrCodeSubmissionInProgress is returned when another request holds the row lock
	ErrCodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
	ErrCodeStoreFailure         = "STORE_FAILURE"
	// ErrCodeLockUnavailable is returned when the row lock backend cannot be reached
	ErrCodeLockUnavailable = "LOCK_UNAVAILABLE"
)

// Input error codes
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeRowIndexOutOfRange  = "ROW_INDEX_OUT_OF_RANGE"
	ErrCodeInvalidFile         = "INVALID_FILE"
	ErrCodeInvalidFileName     = "INVALID_FILE_NAME"
	ErrCodeEmptyUpload         = "EMPTY_UPLOAD"
	ErrCodeRequestTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeInvalidFieldMapping = "INVALID_FIELD_MAPPING"
)

// Row submission failure codes, reported alongside the row state
const (
	ErrCodeRowValidation        = "ROW_VALIDATION_FAILED"
	ErrCodeRowDeclined          = "ROW_DECLINED"
	ErrCodeRowTransport         = "GATEWAY_TRANSPORT_ERROR"
	ErrCodeRowDuplicateExceeded = "DUPLICATE_RETRIES_EXCEEDED"
)

// ErrCodeRateLimited is used when rate limit is exceeded
const ErrCodeRateLimited = "RATE_LIMITED"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,

	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeUploadNotFound:       http.StatusNotFound,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeSubmissionInProgress: http.StatusConflict,
	ErrCodeStoreFailure:         http.StatusInternalServerError,
	ErrCodeLockUnavailable:      http.StatusServiceUnavailable,

	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusBadRequest,
	ErrCodeRowIndexOutOfRange:  http.StatusBadRequest,
	ErrCodeInvalidFile:         http.StatusBadRequest,
	ErrCodeInvalidFileName:     http.StatusBadRequest,
	ErrCodeEmptyUpload:         http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeInvalidFieldMapping: http.StatusBadRequest,

	ErrCodeRowValidation:        http.StatusBadRequest,
	ErrCodeRowDeclined:          http.StatusBadRequest,
	ErrCodeRowTransport:         http.StatusInternalServerError,
	ErrCodeRowDuplicateExceeded: http.StatusBadRequest,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether code maps to a 4xx status
func IsClientError(code string) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}
