package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// AccountRepository implements AccountRepository using GORM
type AccountRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// GetByUserID retrieves an account, or nil when none exists
func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (*entity.Account, error) {
	var accountModel model.Account
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&accountModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get account", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStoreError(result.Error)
	}

	return &entity.Account{
		UserID:    accountModel.UserID,
		Balance:   accountModel.Balance,
		CreatedAt: accountModel.CreatedAt,
		UpdatedAt: accountModel.UpdatedAt,
	}, nil
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountModel := model.Account{
		UserID:    account.UserID,
		Balance:   account.Balance,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&accountModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return errs.ErrDuplicateKey
		}
		r.logger.Error("Failed to create account", map[string]any{
			"user_id": account.UserID,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// Debit subtracts amount from the balance. The balance guard in the WHERE
// clause keeps a concurrent debit from driving the balance negative.
func (r *AccountRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to debit account", map[string]any{
			"user_id": userID,
			"amount":  amount.String(),
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	if result.RowsAffected == 0 {
		account, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if account == nil {
			return errs.ErrAccountNotFound
		}
		return errs.ErrInsufficientBalance
	}

	return nil
}

// Credit adds amount back to the balance
func (r *AccountRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal) error {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to credit account", map[string]any{
			"user_id": userID,
			"amount":  amount.String(),
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	if result.RowsAffected == 0 {
		return errs.ErrAccountNotFound
	}

	return nil
}
