package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// PointsRepository implements PointsRepository using GORM
type PointsRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPointsRepository creates a new PointsRepository instance
func NewPointsRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *PointsRepository {
	return &PointsRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// LedgerExists reports whether a credit has been applied for the order
func (r *PointsRepository) LedgerExists(ctx context.Context, orderID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.PointsTransaction{}).
		Where("order_id = ?", orderID).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to check points ledger", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	return count > 0, nil
}

// CreateLedger inserts one credit row
func (r *PointsRepository) CreateLedger(ctx context.Context, txn *entity.PointsTransaction) error {
	txnModel := model.PointsTransaction{
		UserID:    txn.UserID,
		OrderID:   txn.OrderID,
		Points:    txn.Points,
		CreatedAt: txn.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&txnModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate points credit rejected", map[string]any{
				"order_id": txn.OrderID,
				"user_id":  txn.UserID,
			})
			return errs.ErrDuplicateKey
		}
		r.logger.Error("Failed to create points ledger row", map[string]any{
			"order_id": txn.OrderID,
			"error":    result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// AddToBalance adds points to the user's running total, creating the balance
// row when absent
func (r *PointsRepository) AddToBalance(ctx context.Context, userID string, points decimal.Decimal) error {
	now := r.timeProvider.Now()
	row := model.UserPoints{
		UserID:      userID,
		TotalPoints: points,
		UpdatedAt:   now,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_points": gorm.Expr("user_points.total_points + ?", points),
			"updated_at":   now,
		}),
	}).Create(&row)

	if result.Error != nil {
		r.logger.Error("Failed to add to points balance", map[string]any{
			"user_id": userID,
			"points":  points.String(),
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// GetBalance returns the user's total points, zero when no row exists
func (r *PointsRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var row model.UserPoints
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		r.logger.Error("Failed to get points balance", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return decimal.Zero, r.errorClassifier.wrapStoreError(result.Error)
	}

	return row.TotalPoints, nil
}
