package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

const unfreezeColumns = `id, member_id, reason, requested_at, status, processed_by, admin_notes, processed_at`

type unfreezeRepository struct {
	db sqlx.ExtContext
}

func (r *unfreezeRepository) Create(ctx context.Context, req *domain.UnfreezeRequest) error {
	query := `
		INSERT INTO unfreeze_requests (` + unfreezeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.MemberID,
		req.Reason,
		req.RequestedAt,
		req.Status,
		req.ProcessedBy,
		req.AdminNotes,
		req.ProcessedAt,
	)

	return mapError(err)
}

func (r *unfreezeRepository) GetByID(ctx context.Context, id string) (*domain.UnfreezeRequest, error) {
	return r.get(ctx, `SELECT `+unfreezeColumns+` FROM unfreeze_requests WHERE id = $1`, id)
}

func (r *unfreezeRepository) GetForUpdate(ctx context.Context, id string) (*domain.UnfreezeRequest, error) {
	return r.get(ctx, `SELECT `+unfreezeColumns+` FROM unfreeze_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *unfreezeRepository) get(ctx context.Context, query, id string) (*domain.UnfreezeRequest, error) {
	var req domain.UnfreezeRequest
	if err := sqlx.GetContext(ctx, r.db, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *unfreezeRepository) HasPending(ctx context.Context, memberID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM unfreeze_requests WHERE member_id = $1 AND status = $2)`

	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, query, memberID, domain.UnfreezeStatusPending); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *unfreezeRepository) Process(ctx context.Context, req *domain.UnfreezeRequest) error {
	query := `
		UPDATE unfreeze_requests
		SET status = $3, processed_by = $4, admin_notes = $5, processed_at = $6
		WHERE id = $1 AND status = $2
	`

	res, err := r.db.ExecContext(ctx, query,
		req.ID,
		domain.UnfreezeStatusPending,
		req.Status,
		req.ProcessedBy,
		req.AdminNotes,
		req.ProcessedAt,
	)
	if err != nil {
		return err
	}

	return expectOneRow(res, ErrStaleState)
}

func (r *unfreezeRepository) List(ctx context.Context, filter domain.UnfreezeFilter) ([]*domain.UnfreezeRequest, int64, error) {
	var cond conditions
	if filter.MemberID != "" {
		cond.add("member_id = $%d", filter.MemberID)
	}
	if filter.Status != "" {
		cond.add("status = $%d", filter.Status)
	}

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM unfreeze_requests`+cond.where(), cond.args...); err != nil {
		return nil, 0, err
	}

	limit, args := cond.page(filter.Page.Limit, filter.Page.Offset)
	query := `SELECT ` + unfreezeColumns + ` FROM unfreeze_requests` + cond.where() + ` ORDER BY requested_at DESC, id` + limit

	requests := []*domain.UnfreezeRequest{}
	if err := sqlx.SelectContext(ctx, r.db, &requests, query, args...); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
