package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PointsTransaction is the database model for applied credits. The unique
// order id index is the credit idempotency anchor.
type PointsTransaction struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	UserID    string          `gorm:"not null;size:64;index"`
	OrderID   string          `gorm:"not null;size:64;uniqueIndex"`
	Points    decimal.Decimal `gorm:"not null;type:numeric(18,2)"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName specifies the table name for PointsTransaction
func (PointsTransaction) TableName() string {
	return "points_transaction"
}

// UserPoints is the database model for running point totals
type UserPoints struct {
	UserID      string          `gorm:"primaryKey;size:64"`
	TotalPoints decimal.Decimal `gorm:"not null;type:numeric(18,2)"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName specifies the table name for UserPoints
func (UserPoints) TableName() string {
	return "user_points"
}
