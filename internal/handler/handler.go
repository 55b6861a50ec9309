package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/sacco-ledger/internal/auth"
	"github.com/segyhp/sacco-ledger/internal/domain"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
	"github.com/segyhp/sacco-ledger/pkg/pagination"
	"github.com/segyhp/sacco-ledger/pkg/response"
)

type MemberService interface {
	CreateMember(ctx context.Context, actor domain.Actor, req *domain.CreateMemberRequest) (*domain.Member, error)
	UpdateMember(ctx context.Context, actor domain.Actor, memberID string, req *domain.UpdateMemberRequest) (*domain.Member, error)
	UpdateMemberStatus(ctx context.Context, actor domain.Actor, memberID string, req *domain.UpdateMemberStatusRequest) (*domain.Member, error)
	GetMember(ctx context.Context, actor domain.Actor, memberID string) (*domain.Member, error)
	ListMembers(ctx context.Context, actor domain.Actor, filter domain.MemberFilter) ([]*domain.Member, int64, error)
}

type LoanService interface {
	CreateLoan(ctx context.Context, actor domain.Actor, req *domain.CreateLoanRequest) (*domain.Loan, error)
	ApproveLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error)
	RejectLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error)
	DisburseLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error)
	MarkOverdue(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error)
	MarkDefaulted(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error)
	ApplyRepayment(ctx context.Context, actor domain.Actor, loanID string, req *domain.CreateRepaymentRequest) (*domain.RepaymentResult, error)
	GetLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error)
	ListLoans(ctx context.Context, actor domain.Actor, filter domain.LoanFilter) ([]*domain.Loan, int64, error)
	GetRepayment(ctx context.Context, actor domain.Actor, repaymentID string) (*domain.Repayment, error)
	ListRepayments(ctx context.Context, actor domain.Actor, loanID string, page domain.Page) ([]*domain.Repayment, int64, error)
}

type LedgerService interface {
	RecordTransaction(ctx context.Context, actor domain.Actor, req *domain.CreateTransactionRequest) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, actor domain.Actor, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, actor domain.Actor, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error)
	GetSavings(ctx context.Context, actor domain.Actor, memberID string) (*domain.Savings, error)
}

type UnfreezeService interface {
	RequestUnfreeze(ctx context.Context, actor domain.Actor, req *domain.CreateUnfreezeRequest) (*domain.UnfreezeRequest, error)
	ProcessUnfreezeRequest(ctx context.Context, actor domain.Actor, requestID string, req *domain.ProcessUnfreezeRequest) (*domain.UnfreezeRequest, error)
	GetUnfreezeRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.UnfreezeRequest, error)
	ListUnfreezeRequests(ctx context.Context, actor domain.Actor, filter domain.UnfreezeFilter) ([]*domain.UnfreezeRequest, int64, error)
}

type DashboardService interface {
	GetDashboardStats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error)
}

// actorOrFail returns the authenticated caller, writing 401 when the request
// did not pass through the auth middleware.
func actorOrFail(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		response.FromError(w, customError.WrapUnauthorized("Access token required"))
	}
	return actor, ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		response.FromError(w, customError.WrapValidation("Invalid request body", nil))
		return false
	}
	return true
}

func pathVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func writeList(w http.ResponseWriter, items interface{}, params pagination.Params, total int64, err error) {
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, pagination.NewResponse(items, params, total))
}
