package dto

import (
	"errors"
	"net/http"

	"github.com/invoiceme/backend/internal/domain/shared"
)

// API error codes as they appear in ErrorInfo.Code
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// business rule violations on an existing invoice
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodePaymentExceedsBalance = "ERR_PAYMENT_EXCEEDS_BALANCE"
	ErrCodeCurrencyMismatch      = "ERR_CURRENCY_MISMATCH"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

var httpStatusByCode = map[string]int{
	ErrCodeUnknown:               http.StatusInternalServerError,
	ErrCodeInternal:              http.StatusInternalServerError,
	ErrCodeValidation:            http.StatusBadRequest,
	ErrCodeNotFound:              http.StatusNotFound,
	ErrCodeAlreadyExists:         http.StatusConflict,
	ErrCodeConcurrencyConflict:   http.StatusConflict,
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodePaymentExceedsBalance: http.StatusUnprocessableEntity,
	ErrCodeCurrencyMismatch:      http.StatusUnprocessableEntity,
	ErrCodeBadRequest:            http.StatusBadRequest,
	ErrCodeInvalidJSON:           http.StatusBadRequest,
	ErrCodeRequestTooLarge:       http.StatusRequestEntityTooLarge,
}

var apiCodeByDomainCode = map[string]string{
	shared.CodeValidation:            ErrCodeValidation,
	shared.CodeNotFound:              ErrCodeNotFound,
	shared.CodeAlreadyExists:         ErrCodeAlreadyExists,
	shared.CodeConcurrencyConflict:   ErrCodeConcurrencyConflict,
	shared.CodeInvalidState:          ErrCodeInvalidState,
	shared.CodePaymentExceedsBalance: ErrCodePaymentExceedsBalance,
	shared.CodeCurrencyMismatch:      ErrCodeCurrencyMismatch,
}

// GetHTTPStatus returns the status for an API error code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to the API format.
// API codes and unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := apiCodeByDomainCode[code]; ok {
		return apiCode
	}
	return code
}

// ClassifyError resolves a domain error anywhere in err's chain to its API
// code and HTTP status. ok is false for errors that carry no domain code.
func ClassifyError(err error) (code string, status int, message string, ok bool) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return ErrCodeInternal, http.StatusInternalServerError, "", false
	}
	code = NormalizeErrorCode(domainErr.Code)
	return code, GetHTTPStatus(code), domainErr.Message, true
}
