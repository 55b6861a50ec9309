package handler

import (
	"net/http"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/pkg/pagination"
	"github.com/segyhp/sacco-ledger/pkg/response"
)

type MemberHandler struct {
	members MemberService
	ledger  LedgerService
}

func NewMemberHandler(members MemberService, ledger LedgerService) *MemberHandler {
	return &MemberHandler{
		members: members,
		ledger:  ledger,
	}
}

// CreateMember handles POST /members
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.CreateMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	member, err := h.members.CreateMember(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, member)
}

// ListMembers handles GET /members?status=&role=&page=&limit=
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	params := pagination.FromRequest(r)
	q := r.URL.Query()
	filter := domain.MemberFilter{
		Status: domain.MemberStatus(q.Get("status")),
		Role:   domain.Role(q.Get("role")),
		Page:   params.Window(),
	}

	members, total, err := h.members.ListMembers(r.Context(), actor, filter)
	writeList(w, members, params, total, err)
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	member, err := h.members.GetMember(r.Context(), actor, pathVar(r, "memberId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.UpdateMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}

	member, err := h.members.UpdateMember(r.Context(), actor, pathVar(r, "memberId"), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) UpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req domain.UpdateMemberStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	member, err := h.members.UpdateMemberStatus(r.Context(), actor, pathVar(r, "memberId"), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, member)
}

// GetSavings handles GET /members/{memberId}/savings
func (h *MemberHandler) GetSavings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	savings, err := h.ledger.GetSavings(r.Context(), actor, pathVar(r, "memberId"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, savings)
}
