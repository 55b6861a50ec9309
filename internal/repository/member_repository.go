package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

const memberColumns = `id, member_number, first_name, last_name, email, phone, national_id, address,
	role, join_date, is_active, status, created_at, updated_at`

type memberRepository struct {
	db sqlx.ExtContext
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.MemberNumber,
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.NationalID,
		member.Address,
		member.Role,
		member.JoinDate,
		member.IsActive,
		member.Status,
		member.CreatedAt,
		member.UpdatedAt,
	)

	return mapError(err)
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	var member domain.Member
	if err := sqlx.GetContext(ctx, r.db, &member, query, id); err != nil {
		return nil, err
	}

	return &member, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	query := `
		UPDATE members
		SET first_name = $2, last_name = $3, email = $4, phone = $5, national_id = $6, address = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.NationalID,
		member.Address,
		member.IsActive,
		member.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}

	return expectOneRow(res, ErrNotFound)
}

func (r *memberRepository) UpdateStatus(ctx context.Context, id string, status domain.MemberStatus, updatedAt time.Time) error {
	query := `UPDATE members SET status = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status, updatedAt)
	if err != nil {
		return err
	}

	return expectOneRow(res, ErrNotFound)
}

func (r *memberRepository) List(ctx context.Context, filter domain.MemberFilter) ([]*domain.Member, int64, error) {
	var cond conditions
	if filter.Status != "" {
		cond.add("status = $%d", filter.Status)
	}
	if filter.Role != "" {
		cond.add("role = $%d", filter.Role)
	}

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM members`+cond.where(), cond.args...); err != nil {
		return nil, 0, err
	}

	limit, args := cond.page(filter.Page.Limit, filter.Page.Offset)
	query := `SELECT ` + memberColumns + ` FROM members` + cond.where() + ` ORDER BY created_at DESC, id` + limit

	members := []*domain.Member{}
	if err := sqlx.SelectContext(ctx, r.db, &members, query, args...); err != nil {
		return nil, 0, err
	}

	return members, total, nil
}
