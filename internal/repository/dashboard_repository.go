package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

type dashboardRepository struct {
	db sqlx.ExtContext
}

func (r *dashboardRepository) CountMembers(ctx context.Context) (int64, error) {
	var total int64
	err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM members`)
	return total, err
}

func (r *dashboardRepository) TotalSavings(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(balance), 0) FROM savings`)
}

func (r *dashboardRepository) OutstandingLoanBalance(ctx context.Context, statuses []domain.LoanStatus) (decimal.Decimal, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return r.sum(ctx, `SELECT COALESCE(SUM(balance), 0) FROM loans WHERE status = ANY($1)`, pq.Array(names))
}

func (r *dashboardRepository) SumTransactions(ctx context.Context, txnType domain.TransactionType, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE type = $1 AND created_at >= $2 AND created_at < $3
	`
	return r.sum(ctx, query, txnType, from, to)
}

func (r *dashboardRepository) sum(ctx context.Context, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, r.db, &total, query, args...); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *dashboardRepository) LoanCountsByStatus(ctx context.Context) (map[domain.LoanStatus]int64, error) {
	var rows []struct {
		Status domain.LoanStatus `db:"status"`
		Count  int64             `db:"count"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT status, COUNT(*) AS count FROM loans GROUP BY status`); err != nil {
		return nil, err
	}

	counts := make(map[domain.LoanStatus]int64, len(domain.AllLoanStatuses))
	for _, s := range domain.AllLoanStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
