package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	// Create inserts a new member
	Create(ctx context.Context, member *domain.Member) error

	// GetByID retrieves a member by its ID
	GetByID(ctx context.Context, id string) (*domain.Member, error)

	// Update writes the profile fields of a member. Role and status are untouched.
	Update(ctx context.Context, member *domain.Member) error

	// UpdateStatus changes only the status column
	UpdateStatus(ctx context.Context, id string, status domain.MemberStatus, updatedAt time.Time) error

	// List returns one page of members and the total match count
	List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, int64, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id string) (*domain.Loan, error)

	// GetForUpdate retrieves a loan and locks its row until the transaction ends
	GetForUpdate(ctx context.Context, id string) (*domain.Loan, error)

	// UpdateStatus applies change only while the stored status equals change.From.
	// It returns ErrStaleState when no row matched.
	UpdateStatus(ctx context.Context, change domain.LoanStatusChange) error

	// ApplyBalance sets the outstanding balance and status of a locked loan
	ApplyBalance(ctx context.Context, id string, balance decimal.Decimal, status domain.LoanStatus, updatedAt time.Time) error

	// ListOverdueCandidates returns active loans past their due date with a positive balance
	ListOverdueCandidates(ctx context.Context, now time.Time) ([]*domain.Loan, error)

	// List returns one page of loans and the total match count
	List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, int64, error)
}

// TransactionRepository is append-only: there is no update or delete.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
}

// SavingsRepository defines the interface for savings balance operations
type SavingsRepository interface {
	Create(ctx context.Context, savings *domain.Savings) error
	GetByMemberID(ctx context.Context, memberID string) (*domain.Savings, error)

	// GetForUpdate locks the member's savings row until the transaction ends
	GetForUpdate(ctx context.Context, memberID string) (*domain.Savings, error)

	UpdateBalance(ctx context.Context, memberID string, balance decimal.Decimal, updatedAt time.Time) error
}

// RepaymentRepository is append-only.
type RepaymentRepository interface {
	Create(ctx context.Context, repayment *domain.Repayment) error
	GetByID(ctx context.Context, id string) (*domain.Repayment, error)
	ListByLoanID(ctx context.Context, loanID string, page domain.Page) ([]*domain.Repayment, int64, error)
}

// UnfreezeRequestRepository defines the interface for unfreeze request operations
type UnfreezeRequestRepository interface {
	Create(ctx context.Context, req *domain.UnfreezeRequest) error
	GetByID(ctx context.Context, id string) (*domain.UnfreezeRequest, error)

	// GetForUpdate locks the request row until the transaction ends
	GetForUpdate(ctx context.Context, id string) (*domain.UnfreezeRequest, error)

	// HasPending reports whether the member has a request awaiting a decision
	HasPending(ctx context.Context, memberID string) (bool, error)

	// Process records the decision on a pending request. It returns
	// ErrStaleState when the request is no longer pending.
	Process(ctx context.Context, req *domain.UnfreezeRequest) error

	List(ctx context.Context, filter domain.UnfreezeFilter) ([]*domain.UnfreezeRequest, int64, error)
}

// DashboardRepository runs the read-only aggregates behind the dashboard
type DashboardRepository interface {
	CountMembers(ctx context.Context) (int64, error)
	TotalSavings(ctx context.Context) (decimal.Decimal, error)
	OutstandingLoanBalance(ctx context.Context, statuses []domain.LoanStatus) (decimal.Decimal, error)
	SumTransactions(ctx context.Context, txnType domain.TransactionType, from, to time.Time) (decimal.Decimal, error)
	LoanCountsByStatus(ctx context.Context) (map[domain.LoanStatus]int64, error)
}

// Repositories groups the repositories bound to one connection or transaction
type Repositories struct {
	Members      MemberRepository
	Loans        LoanRepository
	Transactions TransactionRepository
	Savings      SavingsRepository
	Repayments   RepaymentRepository
	Unfreeze     UnfreezeRequestRepository
	Dashboard    DashboardRepository
}

// Transactor runs fn against repositories bound to a single store
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}
