package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentHold is the database model for funds reservations
type PaymentHold struct {
	TxID      string          `gorm:"primaryKey;size:64"`
	UserID    string          `gorm:"not null;size:64;index"`
	Amount    decimal.Decimal `gorm:"not null;type:numeric(18,2)"`
	Status    string          `gorm:"not null;size:20;index"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName specifies the table name for PaymentHold
func (PaymentHold) TableName() string {
	return "payment_hold"
}
