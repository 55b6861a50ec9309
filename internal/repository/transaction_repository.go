package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

const transactionColumns = `id, member_id, loan_id, type, amount, description, processed_by, created_at`

type transactionRepository struct {
	db sqlx.ExtContext
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		txn.ID,
		txn.MemberID,
		txn.LoanID,
		txn.Type,
		txn.Amount,
		txn.Description,
		txn.ProcessedBy,
		txn.CreatedAt,
	)

	return mapError(err)
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	var txn domain.Transaction
	if err := sqlx.GetContext(ctx, r.db, &txn, query, id); err != nil {
		return nil, err
	}

	return &txn, nil
}

func (r *transactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	var cond conditions
	if filter.MemberID != "" {
		cond.add("member_id = $%d", filter.MemberID)
	}
	if filter.LoanID != "" {
		cond.add("loan_id = $%d", filter.LoanID)
	}
	if filter.Type != "" {
		cond.add("type = $%d", filter.Type)
	}

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM transactions`+cond.where(), cond.args...); err != nil {
		return nil, 0, err
	}

	limit, args := cond.page(filter.Page.Limit, filter.Page.Offset)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + cond.where() + ` ORDER BY created_at DESC, id` + limit

	txns := []*domain.Transaction{}
	if err := sqlx.SelectContext(ctx, r.db, &txns, query, args...); err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}
