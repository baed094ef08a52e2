package persistence

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// PointsRepository persists the credit ledger and running totals
type PointsRepository interface {
	// LedgerExists reports whether a credit has been applied for the order
	LedgerExists(ctx context.Context, orderID string) (bool, error)

	// CreateLedger inserts one credit row
	//
	// Possible errors:
	// - ErrDuplicateKey: if a row already exists for the order id
	CreateLedger(ctx context.Context, txn *entity.PointsTransaction) error

	// AddToBalance adds points to the user's running total, creating the
	// balance row when absent
	AddToBalance(ctx context.Context, userID string, points decimal.Decimal) error

	// GetBalance returns the user's total points, zero when no row exists
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}
