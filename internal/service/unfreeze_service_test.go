package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/events"
	"github.com/segyhp/sacco-ledger/internal/repository"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
)

func frozenMember(id string) *domain.Member {
	m := activeMember(id)
	m.Status = domain.MemberStatusFrozen
	return m
}

func pendingRequest(id, memberID string) *domain.UnfreezeRequest {
	return &domain.UnfreezeRequest{
		ID:       id,
		MemberID: memberID,
		Reason:   "Arrears cleared",
		Status:   domain.UnfreezeStatusPending,
	}
}

func TestRequestUnfreeze_Success(t *testing.T) {
	f := newFixture()
	f.repos.Members.On("GetByID", mock.Anything, "member-1").Return(frozenMember("member-1"), nil)
	f.repos.Unfreeze.On("HasPending", mock.Anything, "member-1").Return(false, nil)
	f.repos.Unfreeze.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.UnfreezeRequest) bool {
		return r.MemberID == "member-1" && r.Status == domain.UnfreezeStatusPending
	})).Return(nil)

	request, err := f.unfreezeService().RequestUnfreeze(context.Background(), memberActor, &domain.CreateUnfreezeRequest{
		Reason: "Arrears cleared",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.UnfreezeStatusPending, request.Status)
	assert.Equal(t, fixedNow, request.RequestedAt)
	assert.Nil(t, request.ProcessedAt)
	assert.Equal(t, []string{events.UnfreezeRequested}, f.publisher.Types())
	f.repos.AssertExpectations(t)
}

func TestRequestUnfreeze_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		actor domain.Actor
		req   domain.CreateUnfreezeRequest
		setup func(f *fixture)
		kind  customError.Kind
	}{
		{
			name:  "missing reason",
			actor: memberActor,
			req:   domain.CreateUnfreezeRequest{},
			kind:  customError.KindValidation,
		},
		{
			name:  "filing for another member",
			actor: memberActor,
			req:   domain.CreateUnfreezeRequest{MemberID: "member-2", Reason: "please"},
			kind:  customError.KindForbidden,
		},
		{
			name:  "member not frozen",
			actor: managerActor,
			req:   domain.CreateUnfreezeRequest{MemberID: "M1", Reason: "please"},
			setup: func(f *fixture) {
				f.repos.Members.On("GetByID", mock.Anything, "M1").Return(activeMember("M1"), nil)
			},
			kind: customError.KindConflict,
		},
		{
			name:  "unknown member",
			actor: managerActor,
			req:   domain.CreateUnfreezeRequest{MemberID: "M9", Reason: "please"},
			setup: func(f *fixture) {
				f.repos.Members.On("GetByID", mock.Anything, "M9").Return(nil, sql.ErrNoRows)
			},
			kind: customError.KindNotFound,
		},
		{
			name:  "already pending",
			actor: managerActor,
			req:   domain.CreateUnfreezeRequest{MemberID: "M1", Reason: "please"},
			setup: func(f *fixture) {
				f.repos.Members.On("GetByID", mock.Anything, "M1").Return(frozenMember("M1"), nil)
				f.repos.Unfreeze.On("HasPending", mock.Anything, "M1").Return(true, nil)
			},
			kind: customError.KindConflict,
		},
		{
			name:  "concurrent request wins",
			actor: managerActor,
			req:   domain.CreateUnfreezeRequest{MemberID: "M1", Reason: "please"},
			setup: func(f *fixture) {
				f.repos.Members.On("GetByID", mock.Anything, "M1").Return(frozenMember("M1"), nil)
				f.repos.Unfreeze.On("HasPending", mock.Anything, "M1").Return(false, nil)
				f.repos.Unfreeze.On("Create", mock.Anything, mock.Anything).
					Return(&repository.DuplicateError{Constraint: "unfreeze_requests_one_pending"})
			},
			kind: customError.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setup != nil {
				tt.setup(f)
			}

			req := tt.req
			_, err := f.unfreezeService().RequestUnfreeze(context.Background(), tt.actor, &req)

			assertKind(t, err, tt.kind)
			assert.Empty(t, f.publisher.Types())
		})
	}
}

func TestProcessUnfreezeRequest_Approve(t *testing.T) {
	f := newFixture()
	f.repos.Unfreeze.On("GetForUpdate", mock.Anything, "R1").Return(pendingRequest("R1", "M1"), nil)
	f.repos.Unfreeze.On("Process", mock.Anything, mock.MatchedBy(func(r *domain.UnfreezeRequest) bool {
		return r.Status == domain.UnfreezeStatusApproved && *r.ProcessedBy == adminActor.MemberID
	})).Return(nil)
	f.repos.Members.On("UpdateStatus", mock.Anything, "M1", domain.MemberStatusActive, fixedNow).Return(nil)

	request, err := f.unfreezeService().ProcessUnfreezeRequest(context.Background(), adminActor, "R1", &domain.ProcessUnfreezeRequest{
		Decision: domain.UnfreezeStatusApproved,
		Notes:    "Verified repayment plan",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.UnfreezeStatusApproved, request.Status)
	assert.Equal(t, fixedNow, *request.ProcessedAt)
	assert.Equal(t, "Verified repayment plan", *request.AdminNotes)
	assert.Equal(t, 1, f.tx.Committed)
	assert.Equal(t, []string{events.UnfreezeProcessed, events.MemberStatusChanged}, f.publisher.Types())
	f.repos.AssertExpectations(t)
}

func TestProcessUnfreezeRequest_DenyLeavesMemberFrozen(t *testing.T) {
	f := newFixture()
	f.repos.Unfreeze.On("GetForUpdate", mock.Anything, "R1").Return(pendingRequest("R1", "M1"), nil)
	f.repos.Unfreeze.On("Process", mock.Anything, mock.Anything).Return(nil)

	request, err := f.unfreezeService().ProcessUnfreezeRequest(context.Background(), adminActor, "R1", &domain.ProcessUnfreezeRequest{
		Decision: domain.UnfreezeStatusDenied,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.UnfreezeStatusDenied, request.Status)
	assert.Nil(t, request.AdminNotes)
	f.repos.Members.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{events.UnfreezeProcessed}, f.publisher.Types())
}

func TestProcessUnfreezeRequest_AlreadyProcessed(t *testing.T) {
	denied := pendingRequest("R1", "M1")
	denied.Status = domain.UnfreezeStatusDenied

	f := newFixture()
	f.repos.Unfreeze.On("GetForUpdate", mock.Anything, "R1").Return(denied, nil)

	_, err := f.unfreezeService().ProcessUnfreezeRequest(context.Background(), adminActor, "R1", &domain.ProcessUnfreezeRequest{
		Decision: domain.UnfreezeStatusApproved,
	})

	assertKind(t, err, customError.KindConflict)
	assert.Equal(t, domain.UnfreezeStatusDenied, denied.Status)
	f.repos.Unfreeze.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	f.repos.Members.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.Types())
}

func TestProcessUnfreezeRequest_ConcurrentDecision(t *testing.T) {
	f := newFixture()
	f.repos.Unfreeze.On("GetForUpdate", mock.Anything, "R1").Return(pendingRequest("R1", "M1"), nil)
	f.repos.Unfreeze.On("Process", mock.Anything, mock.Anything).Return(repository.ErrStaleState)

	_, err := f.unfreezeService().ProcessUnfreezeRequest(context.Background(), adminActor, "R1", &domain.ProcessUnfreezeRequest{
		Decision: domain.UnfreezeStatusApproved,
	})

	assertKind(t, err, customError.KindConflict)
	assert.Equal(t, 1, f.tx.RolledBack)
	f.repos.Members.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessUnfreezeRequest_Rejections(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture()
		f.repos.Unfreeze.On("GetForUpdate", mock.Anything, "R9").Return(nil, sql.ErrNoRows)

		_, err := f.unfreezeService().ProcessUnfreezeRequest(context.Background(), adminActor, "R9", &domain.ProcessUnfreezeRequest{
			Decision: domain.UnfreezeStatusApproved,
		})
		assertKind(t, err, customError.KindNotFound)
	})

	t.Run("manager cannot decide", func(t *testing.T) {
		f := newFixture()

		_, err := f.unfreezeService().ProcessUnfreezeRequest(context.Background(), managerActor, "R1", &domain.ProcessUnfreezeRequest{
			Decision: domain.UnfreezeStatusApproved,
		})
		assertKind(t, err, customError.KindForbidden)
		assert.Equal(t, 0, f.tx.Calls)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		f := newFixture()

		_, err := f.unfreezeService().ProcessUnfreezeRequest(context.Background(), adminActor, "R1", &domain.ProcessUnfreezeRequest{
			Decision: domain.UnfreezeStatusPending,
		})
		assertKind(t, err, customError.KindValidation)
	})
}

func TestGetAndListUnfreezeRequests(t *testing.T) {
	f := newFixture()
	f.repos.Unfreeze.On("GetByID", mock.Anything, "R1").Return(pendingRequest("R1", "member-1"), nil)
	f.repos.Unfreeze.On("GetByID", mock.Anything, "R2").Return(pendingRequest("R2", "member-2"), nil)
	s := f.unfreezeService()

	_, err := s.GetUnfreezeRequest(context.Background(), memberActor, "R1")
	require.NoError(t, err)

	_, err = s.GetUnfreezeRequest(context.Background(), memberActor, "R2")
	assertKind(t, err, customError.KindForbidden)

	filter := domain.UnfreezeFilter{Status: domain.UnfreezeStatusPending}
	f.repos.Unfreeze.On("List", mock.Anything, filter).Return([]*domain.UnfreezeRequest{pendingRequest("R1", "member-1")}, int64(1), nil)

	requests, total, err := s.ListUnfreezeRequests(context.Background(), adminActor, filter)
	require.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.Equal(t, int64(1), total)
}
