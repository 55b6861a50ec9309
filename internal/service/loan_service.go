package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/config"
	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/events"
	"github.com/segyhp/sacco-ledger/internal/repository"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
	"github.com/segyhp/sacco-ledger/pkg/utils"
	"github.com/segyhp/sacco-ledger/pkg/validation"
)

type LoanService struct {
	repos     repository.Repositories
	tx        repository.Transactor
	config    *config.Config
	validator *validation.Validator
	notifier  notifier
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewLoanService(
	repos repository.Repositories,
	tx repository.Transactor,
	publisher events.Publisher,
	log logrus.FieldLogger,
	config *config.Config,
) *LoanService {
	return &LoanService{
		repos:     repos,
		tx:        tx,
		config:    config,
		validator: validation.New(),
		notifier:  notifier{publisher: publisher, log: log},
		log:       log,
		now:       time.Now,
	}
}

// CreateLoan records a loan application. New loans always start pending.
func (s *LoanService) CreateLoan(ctx context.Context, actor domain.Actor, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	// Members may only apply for themselves
	if !actor.Can(domain.PermLoanCreate) {
		if err := authorize(actor, domain.PermLoanApply); err != nil {
			return nil, err
		}
		if req.MemberID == "" {
			req.MemberID = actor.MemberID
		}
		if !actor.Owns(req.MemberID) {
			return nil, customError.WrapForbidden(string(actor.Role), string(domain.PermLoanCreate))
		}
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if req.TermMonths > s.config.Business.MaxTermMonths {
		return nil, customError.WrapInvalidField("term_months",
			fmt.Sprintf("term_months must be at most %d", s.config.Business.MaxTermMonths))
	}

	rate := s.config.GetDefaultInterestRate()
	if req.InterestRate != nil {
		rate = *req.InterestRate
	}

	balance := req.Principal
	if req.Balance != nil {
		balance = *req.Balance
		if balance.GreaterThan(req.Principal) {
			return nil, customError.WrapInvalidField("balance", "balance must not exceed principal")
		}
	}

	member, err := s.repos.Members.GetByID(ctx, req.MemberID)
	if err != nil {
		if isNotFound(err) {
			return nil, customError.WrapMemberNotFound(req.MemberID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if member.Status != domain.MemberStatusActive || !member.IsActive {
		return nil, customError.WrapMemberNotEligible(member.ID, string(member.Status))
	}

	now := s.now()
	loan := &domain.Loan{
		ID:                 uuid.New().String(),
		MemberID:           member.ID,
		LoanNumber:         req.LoanNumber,
		Principal:          req.Principal,
		InterestRate:       rate,
		TermMonths:         req.TermMonths,
		MonthlyInstallment: utils.CalculateMonthlyInstallment(req.Principal, rate, req.TermMonths),
		Status:             domain.LoanStatusPending,
		Balance:            balance,
		Purpose:            req.Purpose,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repos.Loans.Create(ctx, loan); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, customError.WrapLoanAlreadyExists(req.LoanNumber)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{
		"loan_id":   loan.ID,
		"member_id": loan.MemberID,
		"principal": loan.Principal.String(),
		"actor":     actor.MemberID,
	}).Info("loan created")
	s.notifier.publish(ctx, events.New(events.LoanCreated, actor, now, loan))

	return loan, nil
}

// ApproveLoan moves a pending loan to approved
func (s *LoanService) ApproveLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	if err := authorize(actor, domain.PermLoanDecide); err != nil {
		return nil, err
	}
	return s.advance(ctx, actor, loanID, domain.LoanStatusApproved, decide(actor))
}

// RejectLoan moves a pending loan to rejected, recording who decided
func (s *LoanService) RejectLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	if err := authorize(actor, domain.PermLoanDecide); err != nil {
		return nil, err
	}
	return s.advance(ctx, actor, loanID, domain.LoanStatusRejected, decide(actor))
}

func decide(actor domain.Actor) func(repository.Repositories, *domain.Loan, *domain.LoanStatusChange) error {
	return func(_ repository.Repositories, _ *domain.Loan, change *domain.LoanStatusChange) error {
		decidedAt := change.UpdatedAt
		change.ApprovedBy = &actor.MemberID
		change.ApprovedAt = &decidedAt
		return nil
	}
}

// DisburseLoan activates an approved loan and books the disbursement
func (s *LoanService) DisburseLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	if err := authorize(actor, domain.PermLoanDisburse); err != nil {
		return nil, err
	}

	return s.advance(ctx, actor, loanID, domain.LoanStatusActive,
		func(repos repository.Repositories, loan *domain.Loan, change *domain.LoanStatusChange) error {
			disbursed := change.UpdatedAt
			due := utils.CalculateDueDate(disbursed, loan.TermMonths)
			change.DisbursementDate = &disbursed
			change.DueDate = &due

			return repos.Transactions.Create(ctx, &domain.Transaction{
				ID:          uuid.New().String(),
				MemberID:    &loan.MemberID,
				LoanID:      &loan.ID,
				Type:        domain.TransactionLoanDisbursement,
				Amount:      loan.Principal,
				Description: fmt.Sprintf("Disbursement of loan %s", loan.LoanNumber),
				ProcessedBy: actor.MemberID,
				CreatedAt:   disbursed,
			})
		})
}

// MarkOverdue moves an active loan to overdue
func (s *LoanService) MarkOverdue(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	if err := authorize(actor, domain.PermLoanStatus); err != nil {
		return nil, err
	}
	return s.advance(ctx, actor, loanID, domain.LoanStatusOverdue, nil)
}

// MarkDefaulted moves an active or overdue loan to defaulted
func (s *LoanService) MarkDefaulted(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	if err := authorize(actor, domain.PermLoanStatus); err != nil {
		return nil, err
	}
	return s.advance(ctx, actor, loanID, domain.LoanStatusDefaulted, nil)
}

// advance locks the loan, checks the lifecycle and writes the new status
// conditionally on the status it was read with. prepare may fill in extra
// columns and write related rows inside the same transaction.
func (s *LoanService) advance(
	ctx context.Context,
	actor domain.Actor,
	loanID string,
	to domain.LoanStatus,
	prepare func(repository.Repositories, *domain.Loan, *domain.LoanStatusChange) error,
) (*domain.Loan, error) {
	var loan *domain.Loan
	now := s.now()

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		loan, err = repos.Loans.GetForUpdate(ctx, loanID)
		if err != nil {
			if isNotFound(err) {
				return customError.WrapLoanNotFound(loanID)
			}
			return err
		}

		if !loan.Status.CanTransitionTo(to) || to == domain.LoanStatusPaid {
			return customError.WrapInvalidTransition(loanID, string(loan.Status), string(to))
		}

		change := domain.LoanStatusChange{
			LoanID:    loanID,
			From:      loan.Status,
			To:        to,
			UpdatedAt: now,
		}
		if prepare != nil {
			if err := prepare(repos, loan, &change); err != nil {
				return err
			}
		}

		if err := repos.Loans.UpdateStatus(ctx, change); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return customError.WrapInvalidTransition(loanID, string(loan.Status), string(to))
			}
			return err
		}

		applyChange(loan, change)
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.log.WithFields(logrus.Fields{
		"loan_id": loanID,
		"status":  to,
		"actor":   actor.MemberID,
	}).Info("loan status changed")
	s.notifier.publish(ctx, events.New(events.LoanStatusEvent(to), actor, now, loan))

	return loan, nil
}

func applyChange(loan *domain.Loan, change domain.LoanStatusChange) {
	loan.Status = change.To
	loan.UpdatedAt = change.UpdatedAt
	if change.ApprovedBy != nil {
		loan.ApprovedBy = change.ApprovedBy
	}
	if change.ApprovedAt != nil {
		loan.ApprovedAt = change.ApprovedAt
	}
	if change.DisbursementDate != nil {
		loan.DisbursementDate = change.DisbursementDate
	}
	if change.DueDate != nil {
		loan.DueDate = change.DueDate
	}
}

// SweepOverdue moves every active loan past its due date with a positive
// balance to overdue and returns how many moved. Loans changed concurrently
// are skipped.
func (s *LoanService) SweepOverdue(ctx context.Context, actor domain.Actor) (int, error) {
	if err := authorize(actor, domain.PermLoanStatus); err != nil {
		return 0, err
	}

	now := s.now()
	candidates, err := s.repos.Loans.ListOverdueCandidates(ctx, now)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	moved := 0
	var firstErr error
	for _, loan := range candidates {
		change := domain.LoanStatusChange{
			LoanID:    loan.ID,
			From:      domain.LoanStatusActive,
			To:        domain.LoanStatusOverdue,
			UpdatedAt: now,
		}

		if err := s.repos.Loans.UpdateStatus(ctx, change); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				continue
			}
			s.log.WithError(err).WithField("loan_id", loan.ID).Error("failed to mark loan overdue")
			if firstErr == nil {
				firstErr = customError.WrapDatabaseError(err)
			}
			continue
		}

		applyChange(loan, change)
		moved++
		s.notifier.publish(ctx, events.New(events.LoanOverdue, actor, now, loan))
	}

	s.log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"moved":      moved,
	}).Info("overdue sweep finished")

	return moved, firstErr
}

// ApplyRepayment books a repayment against an active or overdue loan and
// marks the loan paid once its balance reaches zero.
func (s *LoanService) ApplyRepayment(ctx context.Context, actor domain.Actor, loanID string, req *domain.CreateRepaymentRequest) (*domain.RepaymentResult, error) {
	if err := authorize(actor, domain.PermRepaymentCreate); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	var result domain.RepaymentResult
	now := s.now()

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		loan, err := repos.Loans.GetForUpdate(ctx, loanID)
		if err != nil {
			if isNotFound(err) {
				return customError.WrapLoanNotFound(loanID)
			}
			return err
		}

		if !loan.Status.AcceptsRepayment() {
			return customError.WrapLoanNotRepayable(loanID, string(loan.Status))
		}

		// Compare at the stored scale so the balance written is the balance checked.
		amount := req.Amount.Round(domain.MoneyScale)
		if !amount.IsPositive() {
			return customError.WrapInvalidField("amount", "amount must be greater than 0")
		}
		if amount.GreaterThan(loan.Balance) {
			if s.config.Business.OverpayPolicy != config.OverpayClamp || !loan.Balance.IsPositive() {
				return customError.WrapRepaymentExceedsBalance(amount.String(), loan.Balance.String())
			}
			amount = loan.Balance
		}

		balance := loan.Balance.Sub(amount).Round(domain.MoneyScale)
		status := loan.Status
		if balance.IsZero() {
			status = domain.LoanStatusPaid
		}

		repayment := &domain.Repayment{
			ID:            uuid.New().String(),
			LoanID:        loan.ID,
			Amount:        amount,
			PaymentMethod: req.PaymentMethod,
			ProcessedBy:   actor.MemberID,
			PaymentDate:   now,
			Notes:         stringPtr(req.Notes),
		}
		if err := repos.Repayments.Create(ctx, repayment); err != nil {
			return err
		}

		if err := repos.Loans.ApplyBalance(ctx, loan.ID, balance, status, now); err != nil {
			return err
		}

		err = repos.Transactions.Create(ctx, &domain.Transaction{
			ID:          uuid.New().String(),
			MemberID:    &loan.MemberID,
			LoanID:      &loan.ID,
			Type:        domain.TransactionLoanPayment,
			Amount:      amount,
			Description: fmt.Sprintf("Repayment of loan %s via %s", loan.LoanNumber, req.PaymentMethod),
			ProcessedBy: actor.MemberID,
			CreatedAt:   now,
		})
		if err != nil {
			return err
		}

		loan.Balance = balance
		loan.Status = status
		loan.UpdatedAt = now
		result = domain.RepaymentResult{Repayment: repayment, Loan: loan}
		return nil
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.log.WithFields(logrus.Fields{
		"loan_id": loanID,
		"amount":  result.Repayment.Amount.String(),
		"balance": result.Loan.Balance.String(),
		"status":  result.Loan.Status,
		"actor":   actor.MemberID,
	}).Info("repayment applied")
	s.notifier.publish(ctx, events.New(events.RepaymentApplied, actor, now, result))
	if result.Loan.Status == domain.LoanStatusPaid {
		s.notifier.publish(ctx, events.New(events.LoanPaid, actor, now, result.Loan))
	}

	return &result, nil
}

// GetLoan returns a loan visible to the caller
func (s *LoanService) GetLoan(ctx context.Context, actor domain.Actor, loanID string) (*domain.Loan, error) {
	loan, err := s.repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		if isNotFound(err) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := authorizeOwner(actor, loan.MemberID); err != nil {
		return nil, err
	}

	return loan, nil
}

// ListLoans returns one page of loans. Members only see their own.
func (s *LoanService) ListLoans(ctx context.Context, actor domain.Actor, filter domain.LoanFilter) ([]*domain.Loan, int64, error) {
	memberID, err := scopeToOwner(actor, filter.MemberID)
	if err != nil {
		return nil, 0, err
	}
	filter.MemberID = memberID

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, customError.WrapInvalidField("status", "status is not a loan status")
	}

	loans, total, err := s.repos.Loans.List(ctx, filter)
	if err != nil {
		return nil, 0, customError.WrapDatabaseError(err)
	}

	return loans, total, nil
}

// GetRepayment returns a repayment visible to the caller. Members only see
// repayments against their own loans.
func (s *LoanService) GetRepayment(ctx context.Context, actor domain.Actor, repaymentID string) (*domain.Repayment, error) {
	repayment, err := s.repos.Repayments.GetByID(ctx, repaymentID)
	if err != nil {
		if isNotFound(err) {
			return nil, customError.WrapRepaymentNotFound(repaymentID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if _, err := s.GetLoan(ctx, actor, repayment.LoanID); err != nil {
		return nil, err
	}

	return repayment, nil
}

// ListRepayments returns the repayments booked against a loan
func (s *LoanService) ListRepayments(ctx context.Context, actor domain.Actor, loanID string, page domain.Page) ([]*domain.Repayment, int64, error) {
	if _, err := s.GetLoan(ctx, actor, loanID); err != nil {
		return nil, 0, err
	}

	repayments, total, err := s.repos.Repayments.ListByLoanID(ctx, loanID, page)
	if err != nil {
		return nil, 0, customError.WrapDatabaseError(err)
	}

	return repayments, total, nil
}
