package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// ChargingOrderRepository implements ChargingOrderRepository using GORM
type ChargingOrderRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewChargingOrderRepository creates a new ChargingOrderRepository instance
func NewChargingOrderRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *ChargingOrderRepository {
	return &ChargingOrderRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a charging order entity to a database model
func (r *ChargingOrderRepository) entityToModel(order *entity.ChargingOrder) model.ChargingOrder {
	return model.ChargingOrder{
		OrderID:          order.OrderID,
		TxID:             order.TxID,
		ResourceID:       order.ResourceID,
		UserID:           order.UserID,
		Amount:           order.Amount,
		Status:           string(order.Status),
		SettlementStatus: string(order.SettlementStatus),
		CreatedAt:        order.CreatedAt,
		StartTime:        order.StartTime,
		EndTime:          order.EndTime,
		CancelTime:       order.CancelTime,
		SettlementTime:   order.SettlementTime,
	}
}

// modelToEntity converts a charging order model to an entity
func (r *ChargingOrderRepository) modelToEntity(m *model.ChargingOrder) *entity.ChargingOrder {
	return &entity.ChargingOrder{
		OrderID:          m.OrderID,
		TxID:             m.TxID,
		ResourceID:       m.ResourceID,
		UserID:           m.UserID,
		Amount:           m.Amount,
		Status:           entity.OrderStatus(m.Status),
		SettlementStatus: entity.SettlementStatus(m.SettlementStatus),
		CreatedAt:        m.CreatedAt,
		StartTime:        m.StartTime,
		EndTime:          m.EndTime,
		CancelTime:       m.CancelTime,
		SettlementTime:   m.SettlementTime,
	}
}

// Create inserts a new order
func (r *ChargingOrderRepository) Create(ctx context.Context, order *entity.ChargingOrder) error {
	orderModel := r.entityToModel(order)

	result := r.db.WithContext(ctx).Create(&orderModel)
	if result.Error != nil {
		r.logger.Error("Failed to create charging order", map[string]any{
			"order_id": order.OrderID,
			"tx_id":    order.TxID,
			"error":    result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// GetByTxID retrieves the order created for a tx id, or nil when none exists
func (r *ChargingOrderRepository) GetByTxID(ctx context.Context, txID string) (*entity.ChargingOrder, error) {
	var orderModel model.ChargingOrder
	result := r.db.WithContext(ctx).
		Where("tx_id = ?", txID).
		First(&orderModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get charging order by tx id", map[string]any{
			"tx_id": txID,
			"error": result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStoreError(result.Error)
	}

	return r.modelToEntity(&orderModel), nil
}

// GetByOrderID retrieves an order by order id, or nil when none exists
func (r *ChargingOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*entity.ChargingOrder, error) {
	var orderModel model.ChargingOrder
	result := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&orderModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get charging order", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStoreError(result.Error)
	}

	return r.modelToEntity(&orderModel), nil
}

// Transition moves the order to a new status when its current status is one
// of from, stamping the lifecycle timestamp that matches the target status
func (r *ChargingOrderRepository) Transition(ctx context.Context, txID string, from []entity.OrderStatus, to entity.OrderStatus) (bool, error) {
	now := r.timeProvider.Now()
	updates := map[string]interface{}{
		"status": string(to),
	}
	switch to {
	case entity.OrderInProgress:
		updates["start_time"] = now
	case entity.OrderCompleted:
		updates["end_time"] = now
	case entity.OrderCanceled:
		updates["cancel_time"] = now
	}

	fromStatuses := make([]string, len(from))
	for i, s := range from {
		fromStatuses[i] = string(s)
	}

	result := r.db.WithContext(ctx).Model(&model.ChargingOrder{}).
		Where("tx_id = ? AND status IN ?", txID, fromStatuses).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to transition charging order", map[string]any{
			"tx_id": txID,
			"to":    to,
			"error": result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MarkSettled flips settlement status from UNSETTLED to SETTLED for a
// completed order
func (r *ChargingOrderRepository) MarkSettled(ctx context.Context, orderID string) (bool, error) {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.ChargingOrder{}).
		Where("order_id = ? AND status = ? AND settlement_status = ?",
			orderID, string(entity.OrderCompleted), string(entity.Unsettled)).
		Updates(map[string]interface{}{
			"settlement_status": string(entity.Settled),
			"settlement_time":   now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark order settled", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	return result.RowsAffected > 0, nil
}
