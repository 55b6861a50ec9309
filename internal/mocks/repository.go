package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/repository"
)

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) UpdateStatus(ctx context.Context, id string, status domain.MemberStatus, updatedAt time.Time) error {
	args := m.Called(ctx, id, status, updatedAt)
	return args.Error(0)
}

func (m *MockMemberRepository) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Member), args.Get(1).(int64), args.Error(2)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetForUpdate(ctx context.Context, id string) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, change domain.LoanStatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockLoanRepository) ApplyBalance(ctx context.Context, id string, balance decimal.Decimal, status domain.LoanStatus, updatedAt time.Time) error {
	args := m.Called(ctx, id, balance, status, updatedAt)
	return args.Error(0)
}

func (m *MockLoanRepository) ListOverdueCandidates(ctx context.Context, now time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Loan), args.Get(1).(int64), args.Error(2)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Transaction), args.Get(1).(int64), args.Error(2)
}

type MockSavingsRepository struct {
	mock.Mock
}

func (m *MockSavingsRepository) Create(ctx context.Context, savings *domain.Savings) error {
	args := m.Called(ctx, savings)
	return args.Error(0)
}

func (m *MockSavingsRepository) GetByMemberID(ctx context.Context, memberID string) (*domain.Savings, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Savings), args.Error(1)
}

func (m *MockSavingsRepository) GetForUpdate(ctx context.Context, memberID string) (*domain.Savings, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Savings), args.Error(1)
}

func (m *MockSavingsRepository) UpdateBalance(ctx context.Context, memberID string, balance decimal.Decimal, updatedAt time.Time) error {
	args := m.Called(ctx, memberID, balance, updatedAt)
	return args.Error(0)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) GetByID(ctx context.Context, id string) (*domain.Repayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repayment), args.Error(1)
}

func (m *MockRepaymentRepository) ListByLoanID(ctx context.Context, loanID string, page domain.Page) ([]*domain.Repayment, int64, error) {
	args := m.Called(ctx, loanID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Repayment), args.Get(1).(int64), args.Error(2)
}

type MockUnfreezeRequestRepository struct {
	mock.Mock
}

func (m *MockUnfreezeRequestRepository) Create(ctx context.Context, req *domain.UnfreezeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockUnfreezeRequestRepository) GetByID(ctx context.Context, id string) (*domain.UnfreezeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnfreezeRequest), args.Error(1)
}

func (m *MockUnfreezeRequestRepository) GetForUpdate(ctx context.Context, id string) (*domain.UnfreezeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnfreezeRequest), args.Error(1)
}

func (m *MockUnfreezeRequestRepository) HasPending(ctx context.Context, memberID string) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUnfreezeRequestRepository) Process(ctx context.Context, req *domain.UnfreezeRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockUnfreezeRequestRepository) List(ctx context.Context, filter domain.UnfreezeFilter) ([]*domain.UnfreezeRequest, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.UnfreezeRequest), args.Get(1).(int64), args.Error(2)
}

type MockDashboardRepository struct {
	mock.Mock
}

func (m *MockDashboardRepository) CountMembers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDashboardRepository) TotalSavings(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDashboardRepository) OutstandingLoanBalance(ctx context.Context, statuses []domain.LoanStatus) (decimal.Decimal, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDashboardRepository) SumTransactions(ctx context.Context, txnType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, txnType, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockDashboardRepository) LoanCountsByStatus(ctx context.Context) (map[domain.LoanStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.LoanStatus]int64), args.Error(1)
}

// Repos bundles one mock per repository
type Repos struct {
	Members      *MockMemberRepository
	Loans        *MockLoanRepository
	Transactions *MockTransactionRepository
	Savings      *MockSavingsRepository
	Repayments   *MockRepaymentRepository
	Unfreeze     *MockUnfreezeRequestRepository
	Dashboard    *MockDashboardRepository
}

func NewRepos() *Repos {
	return &Repos{
		Members:      &MockMemberRepository{},
		Loans:        &MockLoanRepository{},
		Transactions: &MockTransactionRepository{},
		Savings:      &MockSavingsRepository{},
		Repayments:   &MockRepaymentRepository{},
		Unfreeze:     &MockUnfreezeRequestRepository{},
		Dashboard:    &MockDashboardRepository{},
	}
}

func (r *Repos) Repositories() repository.Repositories {
	return repository.Repositories{
		Members:      r.Members,
		Loans:        r.Loans,
		Transactions: r.Transactions,
		Savings:      r.Savings,
		Repayments:   r.Repayments,
		Unfreeze:     r.Unfreeze,
		Dashboard:    r.Dashboard,
	}
}

type assertable interface {
	AssertExpectations(t mock.TestingT) bool
}

func (r *Repos) AssertExpectations(t mock.TestingT) {
	for _, m := range []assertable{r.Members, r.Loans, r.Transactions, r.Savings, r.Repayments, r.Unfreeze, r.Dashboard} {
		m.AssertExpectations(t)
	}
}

// Transactor runs fn against the mocked repositories and records whether
// the unit of work committed.
type Transactor struct {
	Repos      *Repos
	Calls      int
	Committed  int
	RolledBack int
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	t.Calls++
	if err := fn(t.Repos.Repositories()); err != nil {
		t.RolledBack++
		return err
	}
	t.Committed++
	return nil
}
