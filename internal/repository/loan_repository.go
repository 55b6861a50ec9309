package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

const loanColumns = `id, member_id, loan_number, principal, interest_rate, term_months, monthly_installment,
	disbursement_date, due_date, status, balance, purpose, approved_by, approved_at, created_at, updated_at`

type loanRepository struct {
	db sqlx.ExtContext
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.MemberID,
		loan.LoanNumber,
		loan.Principal,
		loan.InterestRate,
		loan.TermMonths,
		loan.MonthlyInstallment,
		loan.DisbursementDate,
		loan.DueDate,
		loan.Status,
		loan.Balance,
		loan.Purpose,
		loan.ApprovedBy,
		loan.ApprovedAt,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return mapError(err)
}

func (r *loanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

func (r *loanRepository) GetForUpdate(ctx context.Context, id string) (*domain.Loan, error) {
	return r.get(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)
}

func (r *loanRepository) get(ctx context.Context, query, id string) (*domain.Loan, error) {
	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.db, &loan, query, id); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, change domain.LoanStatusChange) error {
	// Columns left nil keep their stored value.
	query := `
		UPDATE loans
		SET status = $3,
			approved_by = COALESCE($4, approved_by),
			approved_at = COALESCE($5, approved_at),
			disbursement_date = COALESCE($6, disbursement_date),
			due_date = COALESCE($7, due_date),
			updated_at = $8
		WHERE id = $1 AND status = $2
	`

	res, err := r.db.ExecContext(ctx, query,
		change.LoanID,
		change.From,
		change.To,
		change.ApprovedBy,
		change.ApprovedAt,
		change.DisbursementDate,
		change.DueDate,
		change.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return expectOneRow(res, ErrStaleState)
}

func (r *loanRepository) ApplyBalance(ctx context.Context, id string, balance decimal.Decimal, status domain.LoanStatus, updatedAt time.Time) error {
	query := `UPDATE loans SET balance = $2, status = $3, updated_at = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, balance, status, updatedAt)
	if err != nil {
		return err
	}

	return expectOneRow(res, ErrNotFound)
}

func (r *loanRepository) ListOverdueCandidates(ctx context.Context, now time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = $1 AND due_date < $2 AND balance > 0
		ORDER BY due_date
	`

	loans := []*domain.Loan{}
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, domain.LoanStatusActive, now); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, int64, error) {
	var cond conditions
	if filter.MemberID != "" {
		cond.add("member_id = $%d", filter.MemberID)
	}
	if filter.Status != "" {
		cond.add("status = $%d", filter.Status)
	}

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM loans`+cond.where(), cond.args...); err != nil {
		return nil, 0, err
	}

	limit, args := cond.page(filter.Page.Limit, filter.Page.Offset)
	query := `SELECT ` + loanColumns + ` FROM loans` + cond.where() + ` ORDER BY created_at DESC, id` + limit

	loans := []*domain.Loan{}
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, args...); err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}
