package domain

import (
	"time"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
	MemberStatusFrozen   MemberStatus = "frozen"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInactive, MemberStatusFrozen:
		return true
	}
	return false
}

// Member represents a cooperative member
type Member struct {
	ID           string       `json:"id" db:"id"`
	MemberNumber string       `json:"member_number" db:"member_number"`
	FirstName    string       `json:"first_name" db:"first_name"`
	LastName     string       `json:"last_name" db:"last_name"`
	Email        *string      `json:"email,omitempty" db:"email"`
	Phone        string       `json:"phone" db:"phone"`
	NationalID   *string      `json:"national_id,omitempty" db:"national_id"`
	Address      string       `json:"address" db:"address"`
	Role         Role         `json:"role" db:"role"`
	JoinDate     time.Time    `json:"join_date" db:"join_date"`
	IsActive     bool         `json:"is_active" db:"is_active"`
	Status       MemberStatus `json:"status" db:"status"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// DTOs for requests and responses

type CreateMemberRequest struct {
	MemberNumber string     `json:"member_number" validate:"required,max=32"`
	FirstName    string     `json:"first_name" validate:"required,max=100"`
	LastName     string     `json:"last_name" validate:"required,max=100"`
	Email        string     `json:"email" validate:"omitempty,email,max=255"`
	Phone        string     `json:"phone" validate:"required,max=32"`
	NationalID   string     `json:"national_id" validate:"omitempty,max=64"`
	Address      string     `json:"address" validate:"max=500"`
	Role         Role       `json:"role" validate:"omitempty,oneof=member manager admin"`
	JoinDate     *time.Time `json:"join_date"`
}

type UpdateMemberRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Phone      string `json:"phone" validate:"required,max=32"`
	NationalID string `json:"national_id" validate:"omitempty,max=64"`
	Address    string `json:"address" validate:"max=500"`
	IsActive   *bool  `json:"is_active,omitempty"`
}

type UpdateMemberStatusRequest struct {
	Status MemberStatus `json:"status" validate:"required,oneof=active inactive frozen"`
}

type MemberFilter struct {
	Status MemberStatus
	Role   Role
	Page   Page
}
