package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/events"
	"github.com/segyhp/sacco-ledger/internal/repository"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
	"github.com/segyhp/sacco-ledger/pkg/validation"
)

type MemberService struct {
	members   repository.MemberRepository
	tx        repository.Transactor
	validator *validation.Validator
	notifier  notifier
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewMemberService(
	repos repository.Repositories,
	tx repository.Transactor,
	publisher events.Publisher,
	log logrus.FieldLogger,
) *MemberService {
	return &MemberService{
		members:   repos.Members,
		tx:        tx,
		validator: validation.New(),
		notifier:  notifier{publisher: publisher, log: log},
		log:       log,
		now:       time.Now,
	}
}

// CreateMember registers a member together with an empty savings account
func (s *MemberService) CreateMember(ctx context.Context, actor domain.Actor, req *domain.CreateMemberRequest) (*domain.Member, error) {
	if err := authorize(actor, domain.PermMemberCreate); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if role != domain.RoleMember {
		if err := authorize(actor, domain.PermMemberAssignRole); err != nil {
			return nil, err
		}
	}

	now := s.now()
	joinDate := now
	if req.JoinDate != nil {
		joinDate = *req.JoinDate
	}

	member := &domain.Member{
		ID:           uuid.New().String(),
		MemberNumber: strings.TrimSpace(req.MemberNumber),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        stringPtr(strings.ToLower(strings.TrimSpace(req.Email))),
		Phone:        strings.TrimSpace(req.Phone),
		NationalID:   stringPtr(strings.TrimSpace(req.NationalID)),
		Address:      req.Address,
		Role:         role,
		JoinDate:     joinDate,
		IsActive:     true,
		Status:       domain.MemberStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Members.Create(ctx, member); err != nil {
			return err
		}
		return repos.Savings.Create(ctx, &domain.Savings{
			ID:        uuid.New().String(),
			MemberID:  member.ID,
			Balance:   decimal.Zero,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return nil, memberWriteError(err)
	}

	s.log.WithFields(logrus.Fields{
		"member_id": member.ID,
		"role":      member.Role,
		"actor":     actor.MemberID,
	}).Info("member created")
	s.notifier.publish(ctx, events.New(events.MemberCreated, actor, now, member))

	return member, nil
}

// UpdateMember changes contact and profile fields and, when given, the
// active flag. Role and status are untouched.
func (s *MemberService) UpdateMember(ctx context.Context, actor domain.Actor, memberID string, req *domain.UpdateMemberRequest) (*domain.Member, error) {
	if err := authorize(actor, domain.PermMemberUpdate); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	member, err := s.getMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	member.FirstName = strings.TrimSpace(req.FirstName)
	member.LastName = strings.TrimSpace(req.LastName)
	member.Email = stringPtr(strings.ToLower(strings.TrimSpace(req.Email)))
	member.Phone = strings.TrimSpace(req.Phone)
	member.NationalID = stringPtr(strings.TrimSpace(req.NationalID))
	member.Address = req.Address
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}
	member.UpdatedAt = s.now()

	if err := s.members.Update(ctx, member); err != nil {
		if isNotFound(err) {
			return nil, customError.WrapMemberNotFound(memberID)
		}
		return nil, memberWriteError(err)
	}

	return member, nil
}

// UpdateMemberStatus sets the member's status. Pending unfreeze requests are
// independent and stay as they are.
func (s *MemberService) UpdateMemberStatus(ctx context.Context, actor domain.Actor, memberID string, req *domain.UpdateMemberStatusRequest) (*domain.Member, error) {
	if err := authorize(actor, domain.PermMemberStatus); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	member, err := s.getMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	previous := member.Status
	now := s.now()
	if err := s.members.UpdateStatus(ctx, memberID, req.Status, now); err != nil {
		if isNotFound(err) {
			return nil, customError.WrapMemberNotFound(memberID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	member.Status = req.Status
	member.UpdatedAt = now

	s.log.WithFields(logrus.Fields{
		"member_id": memberID,
		"from":      previous,
		"status":    req.Status,
		"actor":     actor.MemberID,
	}).Info("member status changed")
	s.notifier.publish(ctx, events.New(events.MemberStatusChanged, actor, now, map[string]interface{}{
		"member_id": memberID,
		"from":      previous,
		"to":        req.Status,
	}))

	return member, nil
}

// GetMember returns a member visible to the caller
func (s *MemberService) GetMember(ctx context.Context, actor domain.Actor, memberID string) (*domain.Member, error) {
	if err := authorizeOwner(actor, memberID); err != nil {
		return nil, err
	}
	return s.getMember(ctx, memberID)
}

// ListMembers returns one page of members and the total match count
func (s *MemberService) ListMembers(ctx context.Context, actor domain.Actor, filter domain.MemberFilter) ([]*domain.Member, int64, error) {
	if err := authorize(actor, domain.PermLedgerReadAll); err != nil {
		return nil, 0, err
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, customError.WrapInvalidField("status", "status must be one of: active inactive frozen")
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, customError.WrapInvalidField("role", "role must be one of: member manager admin")
	}

	members, total, err := s.members.List(ctx, filter)
	if err != nil {
		return nil, 0, customError.WrapDatabaseError(err)
	}

	return members, total, nil
}

func (s *MemberService) getMember(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, customError.WrapMemberNotFound(memberID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return member, nil
}

// memberWriteError maps unique violations onto the field that collided
func memberWriteError(err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return dbError(err)
	}

	switch repository.DuplicateConstraint(err) {
	case "members_email_key":
		return customError.WrapMemberAlreadyExists("email")
	case "members_national_id_key":
		return customError.WrapMemberAlreadyExists("national id")
	default:
		return customError.WrapMemberAlreadyExists("member number")
	}
}
