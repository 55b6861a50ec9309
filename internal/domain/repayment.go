package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
)

// Repayment is an append-only payment against a loan balance.
type Repayment struct {
	ID            string          `json:"id" db:"id"`
	LoanID        string          `json:"loan_id" db:"loan_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	ProcessedBy   string          `json:"processed_by" db:"processed_by"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	Notes         *string         `json:"notes,omitempty" db:"notes"`
}

type CreateRepaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"decimal_gt=0,decimal_scale=2"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=cash bank_transfer mobile_money"`
	Notes         string          `json:"notes" validate:"max=500"`
}

// RepaymentResult is the outcome of applying a repayment.
type RepaymentResult struct {
	Repayment *Repayment `json:"repayment"`
	Loan      *Loan      `json:"loan"`
}
