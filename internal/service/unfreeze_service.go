package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/events"
	"github.com/segyhp/sacco-ledger/internal/repository"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
	"github.com/segyhp/sacco-ledger/pkg/validation"
)

type UnfreezeService struct {
	repos     repository.Repositories
	tx        repository.Transactor
	validator *validation.Validator
	notifier  notifier
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewUnfreezeService(
	repos repository.Repositories,
	tx repository.Transactor,
	publisher events.Publisher,
	log logrus.FieldLogger,
) *UnfreezeService {
	return &UnfreezeService{
		repos:     repos,
		tx:        tx,
		validator: validation.New(),
		notifier:  notifier{publisher: publisher, log: log},
		log:       log,
		now:       time.Now,
	}
}

// RequestUnfreeze files an appeal for a frozen member. Members file for
// themselves; staff may file on a member's behalf.
func (s *UnfreezeService) RequestUnfreeze(ctx context.Context, actor domain.Actor, req *domain.CreateUnfreezeRequest) (*domain.UnfreezeRequest, error) {
	if err := authorize(actor, domain.PermUnfreezeRequest); err != nil {
		return nil, err
	}

	if req.MemberID == "" {
		req.MemberID = actor.MemberID
	}
	if !actor.Owns(req.MemberID) && !actor.Can(domain.PermMemberStatus) {
		return nil, customError.WrapForbidden(string(actor.Role), string(domain.PermMemberStatus))
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	request := &domain.UnfreezeRequest{
		ID:          uuid.New().String(),
		MemberID:    req.MemberID,
		Reason:      req.Reason,
		RequestedAt: s.now(),
		Status:      domain.UnfreezeStatusPending,
	}

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		member, err := repos.Members.GetByID(ctx, req.MemberID)
		if err != nil {
			if isNotFound(err) {
				return customError.WrapMemberNotFound(req.MemberID)
			}
			return err
		}
		if member.Status != domain.MemberStatusFrozen {
			return customError.WrapMemberNotFrozen(req.MemberID)
		}

		pending, err := repos.Unfreeze.HasPending(ctx, req.MemberID)
		if err != nil {
			return err
		}
		if pending {
			return customError.WrapUnfreezeAlreadyPending(req.MemberID)
		}

		if err := repos.Unfreeze.Create(ctx, request); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return customError.WrapUnfreezeAlreadyPending(req.MemberID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": request.ID,
		"member_id":  request.MemberID,
		"actor":      actor.MemberID,
	}).Info("unfreeze requested")
	s.notifier.publish(ctx, events.New(events.UnfreezeRequested, actor, request.RequestedAt, request))

	return request, nil
}

// ProcessUnfreezeRequest records an admin decision on a pending request.
// Approval reactivates the member in the same store transaction.
func (s *UnfreezeService) ProcessUnfreezeRequest(ctx context.Context, actor domain.Actor, requestID string, req *domain.ProcessUnfreezeRequest) (*domain.UnfreezeRequest, error) {
	if err := authorize(actor, domain.PermUnfreezeProcess); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var request *domain.UnfreezeRequest
	now := s.now()

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		request, err = repos.Unfreeze.GetForUpdate(ctx, requestID)
		if err != nil {
			if isNotFound(err) {
				return customError.WrapUnfreezeNotFound(requestID)
			}
			return err
		}

		if request.Status != domain.UnfreezeStatusPending {
			return customError.WrapUnfreezeAlreadyProcessed(requestID, string(request.Status))
		}

		request.Status = req.Decision
		request.ProcessedBy = &actor.MemberID
		request.AdminNotes = stringPtr(req.Notes)
		request.ProcessedAt = &now

		if err := repos.Unfreeze.Process(ctx, request); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return customError.WrapUnfreezeAlreadyProcessed(requestID, "processed")
			}
			return err
		}

		if req.Decision != domain.UnfreezeStatusApproved {
			return nil
		}

		if err := repos.Members.UpdateStatus(ctx, request.MemberID, domain.MemberStatusActive, now); err != nil {
			if isNotFound(err) {
				return customError.WrapMemberNotFound(request.MemberID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"member_id":  request.MemberID,
		"status":     request.Status,
		"actor":      actor.MemberID,
	}).Info("unfreeze request processed")
	s.notifier.publish(ctx, events.New(events.UnfreezeProcessed, actor, now, request))
	if request.Status == domain.UnfreezeStatusApproved {
		s.notifier.publish(ctx, events.New(events.MemberStatusChanged, actor, now, map[string]interface{}{
			"member_id": request.MemberID,
			"from":      domain.MemberStatusFrozen,
			"to":        domain.MemberStatusActive,
		}))
	}

	return request, nil
}

// GetUnfreezeRequest returns a request visible to the caller
func (s *UnfreezeService) GetUnfreezeRequest(ctx context.Context, actor domain.Actor, requestID string) (*domain.UnfreezeRequest, error) {
	request, err := s.repos.Unfreeze.GetByID(ctx, requestID)
	if err != nil {
		if isNotFound(err) {
			return nil, customError.WrapUnfreezeNotFound(requestID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := authorizeOwner(actor, request.MemberID); err != nil {
		return nil, err
	}

	return request, nil
}

// ListUnfreezeRequests returns one page of requests. Members only see their own.
func (s *UnfreezeService) ListUnfreezeRequests(ctx context.Context, actor domain.Actor, filter domain.UnfreezeFilter) ([]*domain.UnfreezeRequest, int64, error) {
	memberID, err := scopeToOwner(actor, filter.MemberID)
	if err != nil {
		return nil, 0, err
	}
	filter.MemberID = memberID

	requests, total, err := s.repos.Unfreeze.List(ctx, filter)
	if err != nil {
		return nil, 0, customError.WrapDatabaseError(err)
	}

	return requests, total, nil
}
