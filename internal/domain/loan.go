package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusPaid      LoanStatus = "paid"
	LoanStatusOverdue   LoanStatus = "overdue"
	LoanStatusDefaulted LoanStatus = "defaulted"
	LoanStatusRejected  LoanStatus = "rejected"
)

// AllLoanStatuses lists statuses in lifecycle order.
var AllLoanStatuses = []LoanStatus{
	LoanStatusPending,
	LoanStatusApproved,
	LoanStatusActive,
	LoanStatusPaid,
	LoanStatusOverdue,
	LoanStatusDefaulted,
	LoanStatusRejected,
}

// Forward-only lifecycle. Paid is reached through repayments only.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusPending:  {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved: {LoanStatusActive},
	LoanStatusActive:   {LoanStatusPaid, LoanStatusOverdue, LoanStatusDefaulted},
	LoanStatusOverdue:  {LoanStatusPaid, LoanStatusDefaulted},
}

func (s LoanStatus) Valid() bool {
	for _, st := range AllLoanStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	for _, allowed := range loanTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsRepayment reports whether repayments may be applied in this status.
func (s LoanStatus) AcceptsRepayment() bool {
	return s == LoanStatusActive || s == LoanStatusOverdue
}

// MoneyScale is the number of decimal places stored for money amounts.
const MoneyScale = 2

// Loan represents a loan entity
type Loan struct {
	ID                 string          `json:"id" db:"id"`
	MemberID           string          `json:"member_id" db:"member_id"`
	LoanNumber         string          `json:"loan_number" db:"loan_number"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TermMonths         int             `json:"term_months" db:"term_months"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment" db:"monthly_installment"`
	DisbursementDate   *time.Time      `json:"disbursement_date,omitempty" db:"disbursement_date"`
	DueDate            *time.Time      `json:"due_date,omitempty" db:"due_date"`
	Status             LoanStatus      `json:"status" db:"status"`
	Balance            decimal.Decimal `json:"balance" db:"balance"`
	Purpose            string          `json:"purpose" db:"purpose"`
	ApprovedBy         *string         `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanStatusChange is a conditional status write: it only applies while the
// stored status still equals From.
type LoanStatusChange struct {
	LoanID           string
	From             LoanStatus
	To               LoanStatus
	ApprovedBy       *string
	ApprovedAt       *time.Time
	DisbursementDate *time.Time
	DueDate          *time.Time
	UpdatedAt        time.Time
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	MemberID     string           `json:"member_id" validate:"required"`
	LoanNumber   string           `json:"loan_number" validate:"required,max=32"`
	Principal    decimal.Decimal  `json:"principal" validate:"decimal_gt=0,decimal_scale=2"`
	InterestRate *decimal.Decimal `json:"interest_rate,omitempty" validate:"omitempty,decimal_gte=0,decimal_scale=4"`
	TermMonths   int              `json:"term_months" validate:"required,gt=0"`
	Balance      *decimal.Decimal `json:"balance,omitempty" validate:"omitempty,decimal_gt=0,decimal_scale=2"`
	Purpose      string           `json:"purpose" validate:"max=500"`
}

type LoanFilter struct {
	MemberID string
	Status   LoanStatus
	Page     Page
}
