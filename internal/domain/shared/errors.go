// Package shared holds the error types every layer of the ledger agrees on.
package shared

import "fmt"

// Domain error codes. The HTTP layer turns them into ERR_ codes.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidState     = "INVALID_STATE"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeQueryFailed      = "QUERY_FAILED"
	CodeValidation       = "VALIDATION_FAILED"
)

// DomainError is a failure with a stable code. Two domain errors match
// under errors.Is when their codes match, whatever their messages.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Sentinels for errors.Is. Wrap them with fmt.Errorf to add context.
var (
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput     = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState     = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrStoreUnavailable = NewDomainError(CodeStoreUnavailable, "Data store is not configured")
	ErrQueryFailed      = NewDomainError(CodeQueryFailed, "Data store query failed")
)

// ValidationError rejects user input before any write. The store never
// returns one.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Code is always CodeValidation
func (e *ValidationError) Code() string { return CodeValidation }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
