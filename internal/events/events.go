package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segyhp/sacco-ledger/internal/domain"
)

// Routing keys
const (
	MemberCreated       = "member.created"
	MemberStatusChanged = "member.status_changed"
	LoanCreated         = "loan.created"
	LoanApproved        = "loan.approved"
	LoanRejected        = "loan.rejected"
	LoanDisbursed       = "loan.disbursed"
	LoanOverdue         = "loan.overdue"
	LoanDefaulted       = "loan.defaulted"
	LoanPaid            = "loan.paid"
	RepaymentApplied    = "repayment.applied"
	TransactionRecorded = "transaction.recorded"
	UnfreezeRequested   = "unfreeze.requested"
	UnfreezeProcessed   = "unfreeze.processed"
)

// Event is a domain fact published after its store transaction commits.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ActorID    string      `json:"actor_id"`
	Payload    interface{} `json:"payload"`
}

func New(eventType string, actor domain.Actor, at time.Time, payload interface{}) Event {
	return Event{
		Type:       eventType,
		OccurredAt: at,
		ActorID:    actor.MemberID,
		Payload:    payload,
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LoanStatusEvent maps a loan status onto its routing key
func LoanStatusEvent(status domain.LoanStatus) string {
	switch status {
	case domain.LoanStatusApproved:
		return LoanApproved
	case domain.LoanStatusRejected:
		return LoanRejected
	case domain.LoanStatusActive:
		return LoanDisbursed
	case domain.LoanStatusOverdue:
		return LoanOverdue
	case domain.LoanStatusDefaulted:
		return LoanDefaulted
	case domain.LoanStatusPaid:
		return LoanPaid
	}
	return LoanCreated
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
