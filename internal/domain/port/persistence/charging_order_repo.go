package persistence

import (
	"context"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// ChargingOrderRepository persists charging orders
type ChargingOrderRepository interface {
	// Create inserts a new order
	Create(ctx context.Context, order *entity.ChargingOrder) error

	// GetByTxID retrieves the order created for a tx id, or nil when none exists
	GetByTxID(ctx context.Context, txID string) (*entity.ChargingOrder, error)

	// GetByOrderID retrieves an order by order id, or nil when none exists
	GetByOrderID(ctx context.Context, orderID string) (*entity.ChargingOrder, error)

	// Transition moves the order to a new status when its current status
	// is one of from. Returns false when no row matched.
	Transition(ctx context.Context, txID string, from []entity.OrderStatus, to entity.OrderStatus) (bool, error)

	// MarkSettled flips settlement status from UNSETTLED to SETTLED for a
	// completed order. Returns false when no row matched, which makes a
	// second settlement a no-op.
	MarkSettled(ctx context.Context, orderID string) (bool, error)
}
