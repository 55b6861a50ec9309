package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Savings holds the running savings balance of one member.
type Savings struct {
	ID        string          `json:"id" db:"id"`
	MemberID  string          `json:"member_id" db:"member_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
