package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every bounded context.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeBusinessRule   = "BUSINESS_RULE_VIOLATION"
	CodeDataIntegrity  = "DATA_INTEGRITY_ANOMALY"
	CodeNotFound       = "NOT_FOUND"
	CodeAlreadyExists  = "ALREADY_EXISTS"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeDuplicateBatch = "DUPLICATE_BATCH"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so sentinel values work with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed input on a ledger-affecting field.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewBusinessRuleViolation reports an operation refused as a whole, with the
// blocking reasons attached.
func NewBusinessRuleViolation(message string, reasons ...string) *DomainError {
	return &DomainError{
		Code:    CodeBusinessRule,
		Message: message,
		Details: reasons,
	}
}

// Common domain errors
var (
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists  = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput   = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation     = NewDomainError(CodeValidation, "Validation failed")
	ErrBusinessRule   = NewDomainError(CodeBusinessRule, "Business rule violated")
	ErrDataIntegrity  = NewDomainError(CodeDataIntegrity, "Ledger data integrity anomaly")
	ErrDuplicateBatch = NewDomainError(CodeDuplicateBatch, "Batch was already recorded")
)
