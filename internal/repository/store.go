package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = sql.ErrNoRows

	// ErrDuplicate is matched by errors.Is for any unique constraint violation
	ErrDuplicate = errors.New("duplicate key")

	// ErrStaleState is returned by conditional updates that matched no row
	ErrStaleState = errors.New("row state changed")
)

const uniqueViolation = "23505"

// DuplicateError carries the name of the violated unique constraint
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key violates %s", e.Constraint)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// DuplicateConstraint returns the violated constraint name, or "" when err
// is not a duplicate.
func DuplicateConstraint(err error) string {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Constraint
	}
	return ""
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &DuplicateError{Constraint: pqErr.Constraint}
	}
	return err
}

// Store owns the connection pool and hands out repositories bound to it or
// to a transaction.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Repositories returns repositories running on the pool
func (s *Store) Repositories() Repositories {
	return newRepositories(s.db)
}

func (s *Store) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newRepositories(db sqlx.ExtContext) Repositories {
	return Repositories{
		Members:      &memberRepository{db: db},
		Loans:        &loanRepository{db: db},
		Transactions: &transactionRepository{db: db},
		Savings:      &savingsRepository{db: db},
		Repayments:   &repaymentRepository{db: db},
		Unfreeze:     &unfreezeRepository{db: db},
		Dashboard:    &dashboardRepository{db: db},
	}
}

// conditions accumulates AND-ed WHERE clauses with positional arguments.
// Each clause holds a single %d for its placeholder number.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders; a zero limit returns every row
func (c *conditions) page(limit, offset int) (string, []interface{}) {
	if limit <= 0 {
		return "", c.args
	}
	args := append(append([]interface{}{}, c.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(c.args)+1, len(c.args)+2), args
}

func expectOneRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
