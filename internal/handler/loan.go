package handler

import (
	"context"
	"net/http"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/pkg/pagination"
	"github.com/segyhp/sacco-ledger/pkg/response"
)

type LoanHandler struct {
	service LoanService
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.CreateLoanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

// ListLoans handles GET /loans?member_id=&status=&page=&limit=
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	q := r.URL.Query()
	filter := domain.LoanFilter{
		MemberID: q.Get("member_id"),
		Status:   domain.LoanStatus(q.Get("status")),
		Page:     params.Window(),
	}

	loans, total, err := h.service.ListLoans(r.Context(), actor, filter)
	writeList(w, loans, params, total, err)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	loan, err := h.service.GetLoan(r.Context(), actor, pathVar(r, "loanId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

type transition func(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error)

func (h *LoanHandler) transition(fn transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOrFail(w, r)
		if !ok {
			return
		}

		loan, err := fn(r.Context(), actor, pathVar(r, "loanId"))
		if err != nil {
			response.FromError(w, err)
			return
		}

		response.Success(w, loan)
	}
}

func (h *LoanHandler) ApproveLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.ApproveLoan)(w, r)
}

func (h *LoanHandler) RejectLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.RejectLoan)(w, r)
}

func (h *LoanHandler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.DisburseLoan)(w, r)
}

func (h *LoanHandler) MarkOverdue(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.MarkOverdue)(w, r)
}

func (h *LoanHandler) MarkDefaulted(w http.ResponseWriter, r *http.Request) {
	h.transition(h.service.MarkDefaulted)(w, r)
}

// ApplyRepayment handles POST /loans/{loanId}/repayments
func (h *LoanHandler) ApplyRepayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.CreateRepaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ApplyRepayment(r.Context(), actor, pathVar(r, "loanId"), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *LoanHandler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	repayments, total, err := h.service.ListRepayments(r.Context(), actor, pathVar(r, "loanId"), params.Window())
	writeList(w, repayments, params, total, err)
}

// GetRepayment handles GET /repayments/{repaymentId}
func (h *LoanHandler) GetRepayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	repayment, err := h.service.GetRepayment(r.Context(), actor, pathVar(r, "repaymentId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, repayment)
}
