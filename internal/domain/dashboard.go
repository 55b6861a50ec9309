package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is the read-side summary shown on the console home page.
type DashboardStats struct {
	TotalMembers    int64                `json:"total_members"`
	TotalSavings    decimal.Decimal      `json:"total_savings"`
	ActiveLoanTotal decimal.Decimal      `json:"active_loan_total"`
	MonthlyRevenue  decimal.Decimal      `json:"monthly_revenue"`
	PendingLoans    int64                `json:"pending_loans"`
	TotalLoans      int64                `json:"total_loans"`
	DefaultedLoans  int64                `json:"defaulted_loans"`
	DefaultRate     decimal.Decimal      `json:"default_rate"`
	LoansByStatus   map[LoanStatus]int64 `json:"loans_by_status"`
	PeriodStart     time.Time            `json:"period_start"`
	PeriodEnd       time.Time            `json:"period_end"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

// Page is a limit/offset window over a list query.
type Page struct {
	Limit  int
	Offset int
}
