package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the funds the Payment participant debits and refunds
type Account struct {
	UserID    string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanDebit reports whether the balance covers the given amount
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
