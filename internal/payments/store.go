// internal/payments/store.go
package payments

import (
	"context"
	"errors"

	"abiturbot/internal/models"
)

var (
	// ErrNotFound means no record exists for the key (status "none").
	ErrNotFound = errors.New("payment record not found")
	// ErrAlreadyPaid guards the forward-only lifecycle: a paid record is
	// never recreated or downgraded.
	ErrAlreadyPaid = errors.New("payment already completed")
)

// Store tracks payment records keyed by session identifier. It is shared
// between the conversation flow and the webhook listener, so every
// implementation must be safe under concurrent access per key. All status
// changes go through these operations, never through direct mutation.
type Store interface {
	// Create registers a new record with status "created". Recreating an
	// unpaid record is allowed (a fresh invoice attempt); recreating a
	// paid one returns ErrAlreadyPaid.
	Create(ctx context.Context, record *models.PaymentRecord) error

	// MarkPaid moves the record to "paid". Only the verified webhook
	// callback calls this. Marking an already-paid record is a no-op;
	// a missing record returns ErrNotFound.
	MarkPaid(ctx context.Context, sessionKey string) error

	// Get returns the current record, or ErrNotFound.
	Get(ctx context.Context, sessionKey string) (*models.PaymentRecord, error)

	// ReadAndClear returns the record and removes it, or ErrNotFound.
	// Called once when results are released.
	ReadAndClear(ctx context.Context, sessionKey string) (*models.PaymentRecord, error)
}

// StatusOf is a convenience wrapper mapping a missing record to the
// explicit "none" status.
func StatusOf(ctx context.Context, store Store, sessionKey string) (models.PaymentStatus, error) {
	record, err := store.Get(ctx, sessionKey)
	if errors.Is(err, ErrNotFound) {
		return models.PaymentStatusNone, nil
	}
	if err != nil {
		return models.PaymentStatusNone, err
	}
	return record.Status, nil
}
