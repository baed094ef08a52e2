package migration

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// Default user account balances
var defaultAccounts = map[string]string{
	"1001": "1000.00",
	"1002": "500.00",
	"1003": "20.00",
}

// CreateDefaultAccounts seeds the default accounts with predefined balances
func CreateDefaultAccounts(ctx context.Context, accounts persistence.AccountRepository, timeProvider coreport.TimeProvider) error {
	for userID, balance := range defaultAccounts {
		existing, err := accounts.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		amount, err := decimal.NewFromString(balance)
		if err != nil {
			return err
		}

		now := timeProvider.Now()
		if err := accounts.Create(ctx, &entity.Account{
			UserID:    userID,
			Balance:   amount,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
	}

	return nil
}
