package handler

import (
	"net/http"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/pkg/pagination"
	"github.com/segyhp/sacco-ledger/pkg/response"
)

type LedgerHandler struct {
	service LedgerService
}

func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// RecordTransaction handles POST /transactions
func (h *LedgerHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.CreateTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	txn, err := h.service.RecordTransaction(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, txn)
}

// ListTransactions handles GET /transactions?member_id=&loan_id=&type=
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	q := r.URL.Query()
	filter := domain.TransactionFilter{
		MemberID: q.Get("member_id"),
		LoanID:   q.Get("loan_id"),
		Type:     domain.TransactionType(q.Get("type")),
		Page:     params.Window(),
	}

	txns, total, err := h.service.ListTransactions(r.Context(), actor, filter)
	writeList(w, txns, params, total, err)
}

func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	txn, err := h.service.GetTransaction(r.Context(), actor, pathVar(r, "transactionId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, txn)
}
