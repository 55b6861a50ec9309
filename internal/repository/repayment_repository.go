package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

const repaymentColumns = `id, loan_id, amount, payment_method, processed_by, payment_date, notes`

type repaymentRepository struct {
	db sqlx.ExtContext
}

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	query := `
		INSERT INTO repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		repayment.ID,
		repayment.LoanID,
		repayment.Amount,
		repayment.PaymentMethod,
		repayment.ProcessedBy,
		repayment.PaymentDate,
		repayment.Notes,
	)

	return mapError(err)
}

func (r *repaymentRepository) GetByID(ctx context.Context, id string) (*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE id = $1`

	var repayment domain.Repayment
	if err := sqlx.GetContext(ctx, r.db, &repayment, query, id); err != nil {
		return nil, err
	}

	return &repayment, nil
}

func (r *repaymentRepository) ListByLoanID(ctx context.Context, loanID string, page domain.Page) ([]*domain.Repayment, int64, error) {
	var cond conditions
	cond.add("loan_id = $%d", loanID)

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM repayments`+cond.where(), cond.args...); err != nil {
		return nil, 0, err
	}

	limit, args := cond.page(page.Limit, page.Offset)
	query := `
		SELECT ` + repaymentColumns + `
		FROM repayments` + cond.where() + `
		ORDER BY payment_date DESC, id` + limit

	repayments := []*domain.Repayment{}
	if err := sqlx.SelectContext(ctx, r.db, &repayments, query, args...); err != nil {
		return nil, 0, err
	}

	return repayments, total, nil
}
