package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Domain errors
var (
	ErrMemberNotFound          = errors.New("member not found")
	ErrMemberAlreadyExists     = errors.New("member already exists")
	ErrMemberNotEligible       = errors.New("member is not eligible")
	ErrLoanNotFound            = errors.New("loan not found")
	ErrLoanAlreadyExists       = errors.New("loan already exists")
	ErrInvalidTransition       = errors.New("invalid loan status transition")
	ErrLoanNotRepayable        = errors.New("loan does not accept repayments")
	ErrRepaymentExceedsBalance = errors.New("repayment exceeds outstanding balance")
	ErrRepaymentNotFound       = errors.New("repayment not found")
	ErrInsufficientSavings     = errors.New("insufficient savings balance")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrSavingsNotFound         = errors.New("savings account not found")
	ErrUnfreezeNotFound        = errors.New("unfreeze request not found")
	ErrUnfreezeProcessed       = errors.New("unfreeze request already processed")
	ErrUnfreezePending         = errors.New("unfreeze request already pending")
	ErrMemberNotFrozen         = errors.New("member is not frozen")
	ErrForbidden               = errors.New("forbidden")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrValidation              = errors.New("validation failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
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
func NewBusinessError(kind Kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation               = "VALIDATION_FAILED"
	ErrCodeUnauthorized             = "UNAUTHORIZED"
	ErrCodeForbidden                = "FORBIDDEN"
	ErrCodeMemberNotFound           = "MEMBER_NOT_FOUND"
	ErrCodeMemberConflict           = "MEMBER_ALREADY_EXISTS"
	ErrCodeMemberNotEligible        = "MEMBER_NOT_ELIGIBLE"
	ErrCodeLoanNotFound             = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyExists        = "LOAN_ALREADY_EXISTS"
	ErrCodeInvalidTransition        = "LOAN_INVALID_TRANSITION"
	ErrCodeLoanNotRepayable         = "LOAN_NOT_REPAYABLE"
	ErrCodeRepaymentExceedsBalance  = "REPAYMENT_EXCEEDS_BALANCE"
	ErrCodeRepaymentNotFound        = "REPAYMENT_NOT_FOUND"
	ErrCodeInsufficientSavings      = "INSUFFICIENT_SAVINGS"
	ErrCodeTransactionNotFound      = "TRANSACTION_NOT_FOUND"
	ErrCodeSavingsNotFound          = "SAVINGS_NOT_FOUND"
	ErrCodeUnfreezeNotFound         = "UNFREEZE_REQUEST_NOT_FOUND"
	ErrCodeUnfreezeAlreadyProcessed = "UNFREEZE_ALREADY_PROCESSED"
	ErrCodeUnfreezeAlreadyPending   = "UNFREEZE_ALREADY_PENDING"
	ErrCodeMemberNotFrozen          = "MEMBER_NOT_FROZEN"
	ErrCodeDatabaseError            = "DATABASE_ERROR"
	ErrCodeCacheError               = "CACHE_ERROR"
)

// KindOf reports the kind of the first BusinessError in err's chain.
// Errors that carry no kind are internal.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func WrapValidation(message string, fields map[string]string) *BusinessError {
	be := NewBusinessError(KindValidation, ErrCodeValidation, message, ErrValidation)
	be.Fields = fields
	return be
}

// WrapInvalidField is a validation error for a single field.
func WrapInvalidField(field, message string) *BusinessError {
	return WrapValidation(message, map[string]string{field: message})
}

func WrapUnauthorized(message string) *BusinessError {
	return NewBusinessError(KindUnauthorized, ErrCodeUnauthorized, message, ErrUnauthorized)
}

func WrapForbidden(role, permission string) *BusinessError {
	return NewBusinessError(
		KindForbidden,
		ErrCodeForbidden,
		fmt.Sprintf("Role %s is not allowed to %s", role, permission),
		ErrForbidden,
	)
}

// Wrap common errors with business context
func WrapMemberNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeMemberNotFound,
		fmt.Sprintf("Member with ID %s not found", memberID),
		ErrMemberNotFound,
	)
}

func WrapMemberAlreadyExists(detail string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeMemberConflict,
		fmt.Sprintf("Member with the same %s already exists", detail),
		ErrMemberAlreadyExists,
	)
}

func WrapMemberNotEligible(memberID, status string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeMemberNotEligible,
		fmt.Sprintf("Member %s has status %s", memberID, status),
		ErrMemberNotEligible,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyExists(loanNumber string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with number %s already exists", loanNumber),
		ErrLoanAlreadyExists,
	)
}

func WrapInvalidTransition(loanID, from, to string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeInvalidTransition,
		fmt.Sprintf("Loan %s cannot move from %s to %s", loanID, from, to),
		ErrInvalidTransition,
	)
}

func WrapLoanNotRepayable(loanID, status string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeLoanNotRepayable,
		fmt.Sprintf("Loan %s with status %s does not accept repayments", loanID, status),
		ErrLoanNotRepayable,
	)
}

func WrapRepaymentExceedsBalance(amount, balance string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeRepaymentExceedsBalance,
		fmt.Sprintf("Repayment amount %s exceeds outstanding balance %s", amount, balance),
		ErrRepaymentExceedsBalance,
	)
}

func WrapInsufficientSavings(amount, balance string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeInsufficientSavings,
		fmt.Sprintf("Withdrawal of %s exceeds savings balance %s", amount, balance),
		ErrInsufficientSavings,
	)
}

func WrapRepaymentNotFound(repaymentID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeRepaymentNotFound,
		fmt.Sprintf("Repayment with ID %s not found", repaymentID),
		ErrRepaymentNotFound,
	)
}

func WrapTransactionNotFound(transactionID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeTransactionNotFound,
		fmt.Sprintf("Transaction with ID %s not found", transactionID),
		ErrTransactionNotFound,
	)
}

func WrapSavingsNotFound(memberID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeSavingsNotFound,
		fmt.Sprintf("Savings for member %s not found", memberID),
		ErrSavingsNotFound,
	)
}

func WrapUnfreezeNotFound(requestID string) *BusinessError {
	return NewBusinessError(
		KindNotFound,
		ErrCodeUnfreezeNotFound,
		fmt.Sprintf("Unfreeze request with ID %s not found", requestID),
		ErrUnfreezeNotFound,
	)
}

func WrapUnfreezeAlreadyProcessed(requestID, status string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeUnfreezeAlreadyProcessed,
		fmt.Sprintf("Unfreeze request %s was already %s", requestID, status),
		ErrUnfreezeProcessed,
	)
}

func WrapUnfreezeAlreadyPending(memberID string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeUnfreezeAlreadyPending,
		fmt.Sprintf("Member %s already has a pending unfreeze request", memberID),
		ErrUnfreezePending,
	)
}

func WrapMemberNotFrozen(memberID string) *BusinessError {
	return NewBusinessError(
		KindConflict,
		ErrCodeMemberNotFrozen,
		fmt.Sprintf("Member %s is not frozen", memberID),
		ErrMemberNotFrozen,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
