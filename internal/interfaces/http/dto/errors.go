package dto

import (
	"net/http"
	"strings"
)

// API error codes. Every code the API answers with starts with ERR_.
const (
	ErrCodeInternal         = "ERR_INTERNAL"
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeNotFound         = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists    = "ERR_ALREADY_EXISTS"
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput     = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge  = "ERR_REQUEST_TOO_LARGE"
	ErrCodeStoreUnavailable = "ERR_STORE_UNAVAILABLE"
	ErrCodeQueryFailed      = "ERR_QUERY_FAILED"
)

const errCodePrefix = "ERR_"

// statusByCode is the HTTP status of each API error code. Settling or
// cancelling an entry in the wrong status is a 422. A store that rejected a
// statement is a 502.
var statusByCode = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeStoreUnavailable: http.StatusServiceUnavailable,
	ErrCodeQueryFailed:      http.StatusBadGateway,
}

// domainAliases names the domain codes that do not map to ERR_<code>
var domainAliases = map[string]string{
	"VALIDATION_FAILED": ErrCodeValidation,
	"INTERNAL_ERROR":    ErrCodeInternal,
}

// APIErrorCode turns a domain error code into its API form. Known domain
// codes gain the ERR_ prefix. API codes and unknown codes pass through.
func APIErrorCode(code string) string {
	if strings.HasPrefix(code, errCodePrefix) {
		return code
	}
	if alias, ok := domainAliases[code]; ok {
		return alias
	}
	if _, ok := statusByCode[errCodePrefix+code]; ok {
		return errCodePrefix + code
	}
	return code
}

// HTTPStatus is the status answered with an API error code. Unknown codes
// are a 500.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
