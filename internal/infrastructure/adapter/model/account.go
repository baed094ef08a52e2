package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the database model for user fund accounts
type Account struct {
	UserID    string          `gorm:"primaryKey;size:64"`
	Balance   decimal.Decimal `gorm:"not null;type:numeric(18,2)"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "user_account"
}
