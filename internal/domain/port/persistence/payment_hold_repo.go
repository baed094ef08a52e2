package persistence

import (
	"context"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// PaymentHoldRepository persists funds reservations
type PaymentHoldRepository interface {
	// Create inserts a new hold
	Create(ctx context.Context, hold *entity.PaymentHold) error

	// GetActive retrieves the hold for a tx id while it is still in HOLD
	// status, or nil when no active hold exists
	GetActive(ctx context.Context, txID string) (*entity.PaymentHold, error)

	// Transition moves the hold from one status to another. Returns false
	// when no row was in the from status, which keeps the one-terminal-
	// transition invariant under concurrent repair.
	Transition(ctx context.Context, txID string, from, to entity.HoldStatus) (bool, error)
}
