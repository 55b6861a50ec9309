package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit          TransactionType = "deposit"
	TransactionWithdrawal       TransactionType = "withdrawal"
	TransactionLoanDisbursement TransactionType = "loan_disbursement"
	TransactionFee              TransactionType = "fee"
	TransactionLoanPayment      TransactionType = "loan_payment"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionDeposit, TransactionWithdrawal, TransactionLoanDisbursement, TransactionFee, TransactionLoanPayment:
		return true
	}
	return false
}

// Manual reports whether staff may book the type directly. Loan
// disbursements and payments are only written by the loan lifecycle.
func (t TransactionType) Manual() bool {
	return t == TransactionDeposit || t == TransactionWithdrawal || t == TransactionFee
}

// AffectsSavings reports whether the type moves the member's savings balance.
func (t TransactionType) AffectsSavings() bool {
	return t == TransactionDeposit || t == TransactionWithdrawal
}

// Transaction is an append-only ledger entry.
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	MemberID    *string         `json:"member_id,omitempty" db:"member_id"`
	LoanID      *string         `json:"loan_id,omitempty" db:"loan_id"`
	Type        TransactionType `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description" db:"description"`
	ProcessedBy string          `json:"processed_by" db:"processed_by"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type CreateTransactionRequest struct {
	MemberID    string          `json:"member_id"`
	LoanID      string          `json:"loan_id"`
	Type        TransactionType `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gt=0,decimal_scale=2"`
	Description string          `json:"description" validate:"max=500"`
}

type TransactionFilter struct {
	MemberID string
	LoanID   string
	Type     TransactionType
	Page     Page
}
