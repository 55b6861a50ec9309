package domain

import "time"

type UnfreezeStatus string

const (
	UnfreezeStatusPending  UnfreezeStatus = "pending"
	UnfreezeStatusApproved UnfreezeStatus = "approved"
	UnfreezeStatusDenied   UnfreezeStatus = "denied"
)

// UnfreezeRequest is a member's appeal to lift a frozen account status.
type UnfreezeRequest struct {
	ID          string         `json:"id" db:"id"`
	MemberID    string         `json:"member_id" db:"member_id"`
	Reason      string         `json:"reason" db:"reason"`
	RequestedAt time.Time      `json:"requested_at" db:"requested_at"`
	Status      UnfreezeStatus `json:"status" db:"status"`
	ProcessedBy *string        `json:"processed_by,omitempty" db:"processed_by"`
	AdminNotes  *string        `json:"admin_notes,omitempty" db:"admin_notes"`
	ProcessedAt *time.Time     `json:"processed_at,omitempty" db:"processed_at"`
}

type CreateUnfreezeRequest struct {
	MemberID string `json:"member_id"`
	Reason   string `json:"reason" validate:"required,max=1000"`
}

type ProcessUnfreezeRequest struct {
	Decision UnfreezeStatus `json:"decision" validate:"required,oneof=approved denied"`
	Notes    string         `json:"notes" validate:"max=1000"`
}

type UnfreezeFilter struct {
	MemberID string
	Status   UnfreezeStatus
	Page     Page
}
