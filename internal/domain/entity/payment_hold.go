package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoldStatus represents the state of a payment pre-hold
type HoldStatus string

// Hold statuses. Exactly one terminal transition per tx id: a HOLD either
// becomes CONFIRMED or CANCELED, never both.
const (
	HoldActive    HoldStatus = "HOLD"
	HoldConfirmed HoldStatus = "CONFIRMED"
	HoldCanceled  HoldStatus = "CANCELED"
)

// PaymentHold is the funds reservation written by the Payment participant's
// Try phase
type PaymentHold struct {
	TxID      string
	UserID    string
	Amount    decimal.Decimal
	Status    HoldStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
