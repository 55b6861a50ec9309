package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/events"
	"github.com/segyhp/sacco-ledger/internal/repository"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
	"github.com/segyhp/sacco-ledger/pkg/validation"
)

// LedgerService records ledger transactions and keeps savings balances in
// step with deposits and withdrawals.
type LedgerService struct {
	repos     repository.Repositories
	tx        repository.Transactor
	validator *validation.Validator
	notifier  notifier
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewLedgerService(
	repos repository.Repositories,
	tx repository.Transactor,
	publisher events.Publisher,
	log logrus.FieldLogger,
) *LedgerService {
	return &LedgerService{
		repos:     repos,
		tx:        tx,
		validator: validation.New(),
		notifier:  notifier{publisher: publisher, log: log},
		log:       log,
		now:       time.Now,
	}
}

// RecordTransaction appends a ledger entry. Deposits and withdrawals move the
// member's savings balance in the same store transaction.
func (s *LedgerService) RecordTransaction(ctx context.Context, actor domain.Actor, req *domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := authorize(actor, domain.PermTransactionWrite); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if !req.Type.Manual() {
		return nil, customError.WrapInvalidField("type", "type must be one of [deposit withdrawal fee]")
	}

	if req.Type.AffectsSavings() && req.MemberID == "" {
		return nil, customError.WrapInvalidField("member_id", "member_id is required for deposits and withdrawals")
	}

	now := s.now()
	txn := &domain.Transaction{
		ID:          uuid.New().String(),
		MemberID:    stringPtr(req.MemberID),
		LoanID:      stringPtr(req.LoanID),
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		ProcessedBy: actor.MemberID,
		CreatedAt:   now,
	}

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if req.MemberID != "" {
			if _, err := repos.Members.GetByID(ctx, req.MemberID); err != nil {
				if isNotFound(err) {
					return customError.WrapMemberNotFound(req.MemberID)
				}
				return err
			}
		}

		if req.LoanID != "" {
			loan, err := repos.Loans.GetByID(ctx, req.LoanID)
			if err != nil {
				if isNotFound(err) {
					return customError.WrapLoanNotFound(req.LoanID)
				}
				return err
			}
			if req.MemberID != "" && loan.MemberID != req.MemberID {
				return customError.WrapInvalidField("loan_id", "loan does not belong to member")
			}
		}

		if req.Type.AffectsSavings() {
			if err := s.moveSavings(ctx, repos, req, now); err != nil {
				return err
			}
		}

		return repos.Transactions.Create(ctx, txn)
	})
	if err != nil {
		return nil, dbError(err)
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"type":           txn.Type,
		"amount":         txn.Amount.String(),
		"actor":          actor.MemberID,
	}).Info("transaction recorded")
	s.notifier.publish(ctx, events.New(events.TransactionRecorded, actor, now, txn))

	return txn, nil
}

func (s *LedgerService) moveSavings(ctx context.Context, repos repository.Repositories, req *domain.CreateTransactionRequest, now time.Time) error {
	savings, err := repos.Savings.GetForUpdate(ctx, req.MemberID)
	if err != nil {
		if isNotFound(err) {
			return customError.WrapSavingsNotFound(req.MemberID)
		}
		return err
	}

	balance := savings.Balance.Add(req.Amount)
	if req.Type == domain.TransactionWithdrawal {
		balance = savings.Balance.Sub(req.Amount)
		if balance.IsNegative() {
			return customError.WrapInsufficientSavings(req.Amount.String(), savings.Balance.String())
		}
	}

	return repos.Savings.UpdateBalance(ctx, req.MemberID, balance, now)
}

// GetTransaction returns a ledger entry visible to the caller. Entries not
// tied to a member are staff-only.
func (s *LedgerService) GetTransaction(ctx context.Context, actor domain.Actor, transactionID string) (*domain.Transaction, error) {
	txn, err := s.repos.Transactions.GetByID(ctx, transactionID)
	if err != nil {
		if isNotFound(err) {
			return nil, customError.WrapTransactionNotFound(transactionID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	owner := ""
	if txn.MemberID != nil {
		owner = *txn.MemberID
	}
	if err := authorizeOwner(actor, owner); err != nil {
		return nil, err
	}

	return txn, nil
}

// ListTransactions returns one page of ledger entries. Members only see their own.
func (s *LedgerService) ListTransactions(ctx context.Context, actor domain.Actor, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	memberID, err := scopeToOwner(actor, filter.MemberID)
	if err != nil {
		return nil, 0, err
	}
	filter.MemberID = memberID

	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, customError.WrapInvalidField("type", "type is not a transaction type")
	}

	txns, total, err := s.repos.Transactions.List(ctx, filter)
	if err != nil {
		return nil, 0, customError.WrapDatabaseError(err)
	}

	return txns, total, nil
}

// GetSavings returns the savings balance of a member
func (s *LedgerService) GetSavings(ctx context.Context, actor domain.Actor, memberID string) (*domain.Savings, error) {
	if err := authorizeOwner(actor, memberID); err != nil {
		return nil, err
	}

	savings, err := s.repos.Savings.GetByMemberID(ctx, memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, customError.WrapSavingsNotFound(memberID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return savings, nil
}
