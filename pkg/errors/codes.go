package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// CodeOK is the sentinel returned by GetCode for a nil error.
const CodeOK ErrorCode = "OK"

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeTimeout            ErrorCode = "COMMON_008"
	ErrCodeValidation         ErrorCode = "COMMON_009"
	ErrCodeSerialization      ErrorCode = "COMMON_010"
	ErrCodeDatabaseError      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_013"
)

// Catalog module error codes
const (
	ErrCodeCatalogEmpty       ErrorCode = "CAT_001"
	ErrCodeAgeBandMalformed   ErrorCode = "CAT_002"
	ErrCodePeriodMalformed    ErrorCode = "CAT_003"
	ErrCodeCatalogImportError ErrorCode = "CAT_004"
	ErrCodeCatalogFileError   ErrorCode = "CAT_005"
)

// Quotation module error codes
const (
	ErrCodeQuoteInvalidAges   ErrorCode = "QUO_001"
	ErrCodeQuoteInvalidRange  ErrorCode = "QUO_002"
	ErrCodeQuoteExportFailed  ErrorCode = "QUO_003"
	ErrCodeQuoteArchiveFailed ErrorCode = "QUO_004"
)

// Auth/session module error codes
const (
	ErrCodeBadCredentials    ErrorCode = "AUTH_001"
	ErrCodeUserNotFound      ErrorCode = "AUTH_002"
	ErrCodeUserInactive      ErrorCode = "AUTH_003"
	ErrCodeSessionExpired    ErrorCode = "AUTH_004"
	ErrCodeSessionSuperseded ErrorCode = "AUTH_005"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeCatalogEmpty:       http.StatusNotFound,
	ErrCodeAgeBandMalformed:   http.StatusUnprocessableEntity,
	ErrCodePeriodMalformed:    http.StatusUnprocessableEntity,
	ErrCodeCatalogImportError: http.StatusInternalServerError,
	ErrCodeCatalogFileError:   http.StatusBadRequest,

	ErrCodeQuoteInvalidAges:   http.StatusBadRequest,
	ErrCodeQuoteInvalidRange:  http.StatusBadRequest,
	ErrCodeQuoteExportFailed:  http.StatusInternalServerError,
	ErrCodeQuoteArchiveFailed: http.StatusBadGateway,

	ErrCodeBadCredentials:    http.StatusUnauthorized,
	ErrCodeUserNotFound:      http.StatusUnauthorized,
	ErrCodeUserInactive:      http.StatusForbidden,
	ErrCodeSessionExpired:    http.StatusUnauthorized,
	ErrCodeSessionSuperseded: http.StatusUnauthorized,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
// Unknown codes map to 500 so that a missing table entry can never turn a
// failure into a silent success.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}
