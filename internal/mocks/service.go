package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) CreateMember(ctx context.Context, actor domain.Actor, req *domain.CreateMemberRequest) (*domain.Member, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) UpdateMember(ctx context.Context, actor domain.Actor, memberID string, req *domain.UpdateMemberRequest) (*domain.Member, error) {
	args := m.Called(ctx, actor, memberID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) UpdateMemberStatus(ctx context.Context, actor domain.Actor, memberID string, req *domain.UpdateMemberStatusRequest) (*domain.Member, error) {
	args := m.Called(ctx, actor, memberID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) GetMember(ctx context.Context, actor domain.Actor, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, actor, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberService) ListMembers(ctx context.Context, actor domain.Actor, filter domain.MemberFilter) ([]*domain.Member, int64, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Member), args.Get(1).(int64), args.Error(2)
}

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) CreateLoan(ctx context.Context, actor domain.Actor, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, actor, req)
	return loanResult(args)
}

func (m *MockLoanService) ApproveLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	return loanResult(m.Called(ctx, actor, loanID))
}

func (m *MockLoanService) RejectLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	return loanResult(m.Called(ctx, actor, loanID))
}

func (m *MockLoanService) DisburseLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	return loanResult(m.Called(ctx, actor, loanID))
}

func (m *MockLoanService) MarkOverdue(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	return loanResult(m.Called(ctx, actor, loanID))
}

func (m *MockLoanService) MarkDefaulted(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	return loanResult(m.Called(ctx, actor, loanID))
}

func (m *MockLoanService) GetLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	return loanResult(m.Called(ctx, actor, loanID))
}

func loanResult(args mock.Arguments) (*domain.Loan, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) ApplyRepayment(ctx context.Context, actor domain.Actor, loanID string, req *domain.CreateRepaymentRequest) (*domain.RepaymentResult, error) {
	args := m.Called(ctx, actor, loanID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepaymentResult), args.Error(1)
}

func (m *MockLoanService) ListLoans(ctx context.Context, actor domain.Actor, filter domain.LoanFilter) ([]*domain.Loan, int64, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Loan), args.Get(1).(int64), args.Error(2)
}

func (m *MockLoanService) GetRepayment(ctx context.Context, actor domain.Actor, repaymentID string) (*domain.Repayment, error) {
	args := m.Called(ctx, actor, repaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repayment), args.Error(1)
}

func (m *MockLoanService) ListRepayments(ctx context.Context, actor domain.Actor, loanID string, page domain.Page) ([]*domain.Repayment, int64, error) {
	args := m.Called(ctx, actor, loanID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Repayment), args.Get(1).(int64), args.Error(2)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordTransaction(ctx context.Context, actor domain.Actor, req *domain.CreateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) GetTransaction(ctx context.Context, actor domain.Actor, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, actor, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, actor domain.Actor, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) GetSavings(ctx context.Context, actor domain.Actor, memberID string) (*domain.Savings, error) {
	args := m.Called(ctx, actor, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Savings), args.Error(1)
}

type MockUnfreezeService struct {
	mock.Mock
}

func (m *MockUnfreezeService) RequestUnfreeze(ctx context.Context, actor domain.Actor, req *domain.CreateUnfreezeRequest) (*domain.UnfreezeRequest, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnfreezeRequest), args.Error(1)
}

func (m *MockUnfreezeService) ProcessUnfreezeRequest(ctx context.Context, actor domain.Actor, requestID string, req *domain.ProcessUnfreezeRequest) (*domain.UnfreezeRequest, error) {
	args := m.Called(ctx, actor, requestID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnfreezeRequest), args.Error(1)
}

func (m *MockUnfreezeService) GetUnfreezeRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.UnfreezeRequest, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnfreezeRequest), args.Error(1)
}

func (m *MockUnfreezeService) ListUnfreezeRequests(ctx context.Context, actor domain.Actor, filter domain.UnfreezeFilter) ([]*domain.UnfreezeRequest, int64, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.UnfreezeRequest), args.Get(1).(int64), args.Error(2)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) GetDashboardStats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}
