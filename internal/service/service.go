package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/sacco-ledger/internal/domain"
	"github.com/segyhp/sacco-ledger/internal/events"
	customError "github.com/segyhp/sacco-ledger/pkg/errors"
)

// authorize is the single permission gate consulted by every mutating
// operation before it touches the store.
func authorize(actor domain.Actor, perm domain.Permission) error {
	if actor.Can(perm) {
		return nil
	}
	return customError.WrapForbidden(string(actor.Role), string(perm))
}

// authorizeOwner lets a caller read records of memberID when they own them
// or may read the whole ledger.
func authorizeOwner(actor domain.Actor, memberID string) error {
	if actor.Owns(memberID) {
		return nil
	}
	return authorize(actor, domain.PermLedgerReadAll)
}

// scopeToOwner narrows a list filter to the caller's own records unless they
// may read the whole ledger. Asking for someone else's records is forbidden.
func scopeToOwner(actor domain.Actor, memberID string) (string, error) {
	if actor.Can(domain.PermLedgerReadAll) {
		return memberID, nil
	}
	if memberID != "" && !actor.Owns(memberID) {
		return "", customError.WrapForbidden(string(actor.Role), string(domain.PermLedgerReadAll))
	}
	return actor.MemberID, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// dbError passes business errors through and wraps everything else as a
// database failure.
func dbError(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

// notifier publishes committed changes. Delivery failures are logged only.
type notifier struct {
	publisher events.Publisher
	log       logrus.FieldLogger
}

func (n notifier) publish(ctx context.Context, event events.Event) {
	if err := n.publisher.Publish(ctx, event); err != nil {
		n.log.WithError(err).WithField("event", event.Type).Warn("failed to publish event")
	}
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
