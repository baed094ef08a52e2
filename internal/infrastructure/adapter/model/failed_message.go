package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FailedMessage is the database model for the dead-letter sink
type FailedMessage struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	MessageID string          `gorm:"not null;size:64;index"`
	OrderID   string          `gorm:"not null;size:64"`
	UserID    string          `gorm:"not null;size:64"`
	Points    decimal.Decimal `gorm:"not null;type:numeric(18,2)"`
	Error     string          `gorm:"type:text"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName specifies the table name for FailedMessage
func (FailedMessage) TableName() string {
	return "failed_message"
}
