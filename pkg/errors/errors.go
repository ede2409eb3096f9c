package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrAlreadyExists       = errors.New("external id already exists")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrCreditLimitExceeded = errors.New("loan exceeds the customer's available credit limit")
	ErrNoActiveLoans       = errors.New("customer has no active loans")
	ErrIllegalTransition   = errors.New("illegal loan status transition")
	ErrTransitionConflict  = errors.New("loan status changed concurrently")
)

// Error codes
const (
	ErrCodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodePaymentNotFound     = "PAYMENT_NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeCreditLimitExceeded = "CREDIT_LIMIT_EXCEEDED"
	ErrCodeNoActiveLoans       = "NO_ACTIVE_LOANS"
	ErrCodeIllegalTransition   = "ILLEGAL_TRANSITION"
	ErrCodeTransitionConflict  = "TRANSITION_CONFLICT"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// BusinessError represents a business logic error. Field carries the
// request field the error is scoped to, when there is one.
type BusinessError struct {
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, field, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidation reports whether the error is a user-input or business-rule
// violation; these map to a 400 at the edge and are never retried.
func (e *BusinessError) IsValidation() bool {
	switch e.Code {
	case ErrCodeAlreadyExists, ErrCodeInvalidAmount, ErrCodeCreditLimitExceeded,
		ErrCodeNoActiveLoans, ErrCodeIllegalTransition:
		return true
	}
	return false
}

// IsNotFound reports whether the error is an unknown-external-id lookup.
func (e *BusinessError) IsNotFound() bool {
	switch e.Code {
	case ErrCodeCustomerNotFound, ErrCodeLoanNotFound, ErrCodePaymentNotFound:
		return true
	}
	return false
}

// IsConflict reports whether the error is a lost concurrency race; these
// are retryable by the caller.
func (e *BusinessError) IsConflict() bool {
	return e.Code == ErrCodeTransitionConflict
}

// Wrap common errors with business context

func WrapCustomerNotFound(externalID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		"external_id",
		fmt.Sprintf("Customer with external id %s not found", externalID),
		ErrCustomerNotFound,
	)
}

func WrapLoanNotFound(externalID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		"external_id",
		fmt.Sprintf("Loan with external id %s not found", externalID),
		ErrLoanNotFound,
	)
}

func WrapPaymentNotFound(externalID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		"external_id",
		fmt.Sprintf("Payment with external id %s not found", externalID),
		ErrPaymentNotFound,
	)
}

func WrapAlreadyExists(externalID string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyExists,
		"external_id",
		fmt.Sprintf("External id %s is already in use", externalID),
		ErrAlreadyExists,
	)
}

func WrapInvalidAmount(field string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		field,
		"Amount must be greater than zero",
		ErrInvalidAmount,
	)
}

func WrapCreditLimitExceeded(customerExternalID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCreditLimitExceeded,
		"outstanding",
		fmt.Sprintf("Loan exceeds the available credit limit for customer %s", customerExternalID),
		ErrCreditLimitExceeded,
	)
}

func WrapNoActiveLoans(customerExternalID string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoActiveLoans,
		"customer_external_id",
		fmt.Sprintf("Customer %s has no active loans", customerExternalID),
		ErrNoActiveLoans,
	)
}

func WrapIllegalTransition(externalID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeIllegalTransition,
		"status",
		fmt.Sprintf("Loan %s cannot transition from %s to %s", externalID, from, to),
		ErrIllegalTransition,
	)
}

func WrapTransitionConflict(externalID string) *BusinessError {
	return NewBusinessError(
		ErrCodeTransitionConflict,
		"status",
		fmt.Sprintf("Loan %s was modified concurrently, retry the request", externalID),
		ErrTransitionConflict,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"",
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"",
		"cache operation failed",
		err,
	)
}
