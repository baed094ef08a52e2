package persistence

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// AccountRepository persists user fund accounts
type AccountRepository interface {
	// GetByUserID retrieves an account, or nil when none exists
	GetByUserID(ctx context.Context, userID string) (*entity.Account, error)

	// Create inserts a new account
	//
	// Possible errors:
	// - ErrDuplicateKey: if an account with the same user id exists
	Create(ctx context.Context, account *entity.Account) error

	// Debit subtracts amount from the balance, guarded so the balance
	// never goes negative
	//
	// Possible errors:
	// - ErrInsufficientBalance: if the balance does not cover the amount
	// - ErrAccountNotFound: if no account exists for the user
	Debit(ctx context.Context, userID string, amount decimal.Decimal) error

	// Credit adds amount back to the balance
	//
	// Possible errors:
	// - ErrAccountNotFound: if no account exists for the user
	Credit(ctx context.Context, userID string, amount decimal.Decimal) error
}
