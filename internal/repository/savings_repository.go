package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

type savingsRepository struct {
	db sqlx.ExtContext
}

func (r *savingsRepository) Create(ctx context.Context, savings *domain.Savings) error {
	query := `
		INSERT INTO savings (id, member_id, balance, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, savings.ID, savings.MemberID, savings.Balance, savings.UpdatedAt)
	return mapError(err)
}

func (r *savingsRepository) GetByMemberID(ctx context.Context, memberID string) (*domain.Savings, error) {
	return r.get(ctx, `SELECT id, member_id, balance, updated_at FROM savings WHERE member_id = $1`, memberID)
}

func (r *savingsRepository) GetForUpdate(ctx context.Context, memberID string) (*domain.Savings, error) {
	return r.get(ctx, `SELECT id, member_id, balance, updated_at FROM savings WHERE member_id = $1 FOR UPDATE`, memberID)
}

func (r *savingsRepository) get(ctx context.Context, query, memberID string) (*domain.Savings, error) {
	var savings domain.Savings
	if err := sqlx.GetContext(ctx, r.db, &savings, query, memberID); err != nil {
		return nil, err
	}
	return &savings, nil
}

func (r *savingsRepository) UpdateBalance(ctx context.Context, memberID string, balance decimal.Decimal, updatedAt time.Time) error {
	query := `UPDATE savings SET balance = $2, updated_at = $3 WHERE member_id = $1`

	res, err := r.db.ExecContext(ctx, query, memberID, balance, updatedAt)
	if err != nil {
		return err
	}

	return expectOneRow(res, ErrNotFound)
}
