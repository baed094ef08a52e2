package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the state of a charging order
type OrderStatus string

// Order statuses
const (
	OrderInit       OrderStatus = "INIT"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderFailed     OrderStatus = "FAILED"
	OrderCanceled   OrderStatus = "CANCELED"
)

// SettlementStatus marks whether an order has been settled
type SettlementStatus string

// Settlement statuses
const (
	Unsettled SettlementStatus = "UNSETTLED"
	Settled   SettlementStatus = "SETTLED"
)

// ChargingOrder is the resource reservation written by the Charging
// participant's Try phase
type ChargingOrder struct {
	OrderID          string
	TxID             string
	ResourceID       string
	UserID           string
	Amount           decimal.Decimal
	Status           OrderStatus
	SettlementStatus SettlementStatus
	CreatedAt        time.Time
	StartTime        *time.Time
	EndTime          *time.Time
	CancelTime       *time.Time
	SettlementTime   *time.Time
}

// CanCancel reports whether the order is still in a cancelable state
func (o *ChargingOrder) CanCancel() bool {
	return o.Status == OrderInit || o.Status == OrderInProgress
}
