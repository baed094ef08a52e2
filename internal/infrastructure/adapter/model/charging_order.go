package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChargingOrder is the database model for charging orders
type ChargingOrder struct {
	OrderID          string          `gorm:"primaryKey;size:64"`
	TxID             string          `gorm:"not null;size:64;uniqueIndex"`
	ResourceID       string          `gorm:"not null;size:64"`
	UserID           string          `gorm:"not null;size:64;index"`
	Amount           decimal.Decimal `gorm:"not null;type:numeric(18,2)"`
	Status           string          `gorm:"not null;size:20;index"`
	SettlementStatus string          `gorm:"not null;size:20;default:UNSETTLED"`
	CreatedAt        time.Time       `gorm:"not null"`
	StartTime        *time.Time
	EndTime          *time.Time
	CancelTime       *time.Time
	SettlementTime   *time.Time
}

// TableName specifies the table name for ChargingOrder
func (ChargingOrder) TableName() string {
	return "charging_order"
}
