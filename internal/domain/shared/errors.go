package shared

import "fmt"

// Error codes shared by every bounded context
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeInvalidState          = "INVALID_STATE"
	CodePaymentExceedsBalance = "PAYMENT_EXCEEDS_BALANCE"
	CodeNotFound              = "NOT_FOUND"
	CodeCurrencyMismatch      = "CURRENCY_MISMATCH"
	CodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	CodeAlreadyExists         = "ALREADY_EXISTS"
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

// Is reports whether target is a DomainError with the same code,
// so errors.Is(err, ErrInvalidState) matches any INVALID_STATE error.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a VALIDATION_ERROR with a formatted message
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewInvalidStateError creates an INVALID_STATE error with a formatted message
func NewInvalidStateError(format string, args ...any) *DomainError {
	return NewDomainError(CodeInvalidState, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a NOT_FOUND error for the given resource
func NewNotFoundError(resource string, id any) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %v not found", resource, id))
}

// Common domain errors, usable as errors.Is targets
var (
	ErrValidation            = NewDomainError(CodeValidation, "Invalid input provided")
	ErrInvalidState          = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrPaymentExceedsBalance = NewDomainError(CodePaymentExceedsBalance, "Payment amount exceeds the outstanding balance")
	ErrNotFound              = NewDomainError(CodeNotFound, "Resource not found")
	ErrCurrencyMismatch      = NewDomainError(CodeCurrencyMismatch, "Currencies do not match")
	ErrConcurrencyConflict   = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrAlreadyExists         = NewDomainError(CodeAlreadyExists, "Resource already exists")
)
