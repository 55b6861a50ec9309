package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	dup := mapError(&pq.Error{Code: "23505", Constraint: "members_member_number_key"})
	assert.True(t, errors.Is(dup, ErrDuplicate))
	assert.Equal(t, "members_member_number_key", DuplicateConstraint(dup))
	assert.Equal(t, "members_member_number_key", DuplicateConstraint(fmt.Errorf("create: %w", dup)))

	fk := &pq.Error{Code: "23503"}
	assert.Same(t, fk, mapError(fk))
	assert.Empty(t, DuplicateConstraint(fk))

	assert.NoError(t, mapError(nil))
}

func TestConditions(t *testing.T) {
	var cond conditions
	assert.Empty(t, cond.where())

	cond.add("member_id = $%d", "M1")
	cond.add("status = $%d", "active")
	assert.Equal(t, " WHERE member_id = $1 AND status = $2", cond.where())

	limit, args := cond.page(20, 40)
	assert.Equal(t, " LIMIT $3 OFFSET $4", limit)
	assert.Equal(t, []interface{}{"M1", "active", 20, 40}, args)
	assert.Len(t, cond.args, 2)

	limit, args = cond.page(0, 0)
	assert.Empty(t, limit)
	assert.Equal(t, []interface{}{"M1", "active"}, args)
}
