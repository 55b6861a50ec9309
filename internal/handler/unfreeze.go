package handler

import (
	"net/http"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/pkg/pagination"
	"github.com/segyhp/sacco-ledger/pkg/response"
)

type UnfreezeHandler struct {
	service UnfreezeService
}

func NewUnfreezeHandler(service UnfreezeService) *UnfreezeHandler {
	return &UnfreezeHandler{service: service}
}

func (h *UnfreezeHandler) RequestUnfreeze(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.CreateUnfreezeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.service.RequestUnfreeze(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, request)
}

// ProcessUnfreezeRequest handles POST /unfreeze-requests/{requestId}/process
func (h *UnfreezeHandler) ProcessUnfreezeRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.ProcessUnfreezeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	request, err := h.service.ProcessUnfreezeRequest(r.Context(), actor, pathVar(r, "requestId"), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, request)
}

func (h *UnfreezeHandler) GetUnfreezeRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	request, err := h.service.GetUnfreezeRequest(r.Context(), actor, pathVar(r, "requestId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, request)
}

func (h *UnfreezeHandler) ListUnfreezeRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	q := r.URL.Query()
	filter := domain.UnfreezeFilter{
		MemberID: q.Get("member_id"),
		Status:   domain.UnfreezeStatus(q.Get("status")),
		Page:     params.Window(),
	}

	requests, total, err := h.service.ListUnfreezeRequests(r.Context(), actor, filter)
	writeList(w, requests, params, total, err)
}
