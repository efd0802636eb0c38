package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeTransport           = "TRANSPORT_ERROR"
	ErrCodeDuplicateReference  = "DUPLICATE_REFERENCE"
	ErrCodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

func NewDuplicateReferenceError(reference string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateReference,
		Message: fmt.Sprintf("payment reference %s was already used", reference),
	}
}

func NewTransactionNotFoundError(reference string) *DomainError {
	return &DomainError{
		Code:    ErrCodeTransactionNotFound,
		Message: fmt.Sprintf("no transaction found for reference %s", reference),
	}
}

func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "an internal error occurred",
		Err:     err,
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code.
// ValidationError and TransportError report their own codes.
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	if _, ok := AsValidationError(err); ok {
		return code == ErrCodeValidation
	}
	if _, ok := AsTransportError(err); ok {
		return code == ErrCodeTransport
	}
	return false
}

// FieldViolation is a single rejected request field.
type FieldViolation struct {
	Field  string
	Reason string
}

// ValidationError is returned when a request is malformed. It is always raised
// before anything is sent to the processor.
type ValidationError struct {
	Violations []FieldViolation
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Violations: []FieldViolation{{Field: field, Reason: reason}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Add appends a violation and returns the receiver.
func (e *ValidationError) Add(field, reason string) *ValidationError {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Reason: reason})
	return e
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// TransportError means the processor could not be asked, or its answer could
// not be understood. It is never a decline.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: processor returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a read-only call failing with this error may be repeated.
func (e *TransportError) IsRetryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}

func AsTransportError(err error) (*TransportError, bool) {
	var tErr *TransportError
	ok := errors.As(err, &tErr)
	return tErr, ok
}
