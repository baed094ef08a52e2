package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointsTransaction is one applied credit. The unique order id is the
// idempotency anchor: at most one ledger row per order.
type PointsTransaction struct {
	ID        uint64
	UserID    string
	OrderID   string
	Points    decimal.Decimal
	CreatedAt time.Time
}

// UserPointsBalance is the running total per user. Eventually equals the
// sum of the user's applied PointsTransaction rows.
type UserPointsBalance struct {
	UserID      string
	TotalPoints decimal.Decimal
	UpdatedAt   time.Time
}

// FailedMessage is the terminal record of a message the consumer could not
// process. Append-only, never auto-retried; remediation is manual.
type FailedMessage struct {
	ID        uint64
	MessageID string
	OrderID   string
	UserID    string
	Points    decimal.Decimal
	Error     string
	CreatedAt time.Time
}
