package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutboxStatus represents the delivery state of an outbox row
type OutboxStatus string

// Outbox statuses. Failed is terminal and operator-visible; Processed is
// set by the consumer once the credit has been applied.
const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxSent      OutboxStatus = "SENT"
	OutboxProcessed OutboxStatus = "PROCESSED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// BusinessTypeOrderSettlement tags outbox rows created by order settlement
const BusinessTypeOrderSettlement = "CHARGING_ORDER_SETTLEMENT"

// OutboxMessage is a durable intent-to-publish row written in the same
// atomic unit as the business change it announces. At most one row exists
// per business id.
type OutboxMessage struct {
	MessageID     string
	BusinessType  string
	BusinessID    string
	Payload       []byte
	Status        OutboxStatus
	RetryCount    int
	NextRetryTime time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PointsMessage is the payload relayed to the broker and consumed by the
// points consumer
type PointsMessage struct {
	MessageID string          `json:"messageId"`
	OrderID   string          `json:"orderId"`
	UserID    string          `json:"userId"`
	Points    decimal.Decimal `json:"points"`
	CreatedAt time.Time       `json:"createdAt"`
}
