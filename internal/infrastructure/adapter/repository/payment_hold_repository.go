package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// PaymentHoldRepository implements PaymentHoldRepository using GORM
type PaymentHoldRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPaymentHoldRepository creates a new PaymentHoldRepository instance
func NewPaymentHoldRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *PaymentHoldRepository {
	return &PaymentHoldRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Create inserts a new hold
func (r *PaymentHoldRepository) Create(ctx context.Context, hold *entity.PaymentHold) error {
	holdModel := model.PaymentHold{
		TxID:      hold.TxID,
		UserID:    hold.UserID,
		Amount:    hold.Amount,
		Status:    string(hold.Status),
		CreatedAt: hold.CreatedAt,
		UpdatedAt: hold.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&holdModel)
	if result.Error != nil {
		r.logger.Error("Failed to create payment hold", map[string]any{
			"tx_id":   hold.TxID,
			"user_id": hold.UserID,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// GetActive retrieves the hold for a tx id while it is still active, or nil
// when no active hold exists
func (r *PaymentHoldRepository) GetActive(ctx context.Context, txID string) (*entity.PaymentHold, error) {
	var holdModel model.PaymentHold
	result := r.db.WithContext(ctx).
		Where("tx_id = ? AND status = ?", txID, string(entity.HoldActive)).
		First(&holdModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment hold", map[string]any{
			"tx_id": txID,
			"error": result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStoreError(result.Error)
	}

	return &entity.PaymentHold{
		TxID:      holdModel.TxID,
		UserID:    holdModel.UserID,
		Amount:    holdModel.Amount,
		Status:    entity.HoldStatus(holdModel.Status),
		CreatedAt: holdModel.CreatedAt,
		UpdatedAt: holdModel.UpdatedAt,
	}, nil
}

// Transition moves the hold from one status to another. The conditional
// update makes a second terminal transition report false instead of
// overwriting the first.
func (r *PaymentHoldRepository) Transition(ctx context.Context, txID string, from, to entity.HoldStatus) (bool, error) {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.PaymentHold{}).
		Where("tx_id = ? AND status = ?", txID, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to transition payment hold", map[string]any{
			"tx_id": txID,
			"from":  from,
			"to":    to,
			"error": result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	return result.RowsAffected > 0, nil
}
