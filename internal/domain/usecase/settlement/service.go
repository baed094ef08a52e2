package settlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// Service settles charging orders. Settle couples the settlement decision
// with a durable delivery intent: the order flip to SETTLED and the PENDING
// outbox row commit in one atomic unit, so the credit can never be promised
// without being recorded, nor recorded without being promised.
type Service struct {
	uow          persistence.UnitOfWork
	policy       entity.PointsPolicy
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewService creates a new settlement Service
func NewService(uow persistence.UnitOfWork, policy entity.PointsPolicy, logger coreport.Logger, timeProvider coreport.TimeProvider) *Service {
	return &Service{
		uow:          uow,
		policy:       policy,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Settle marks the order settled and writes exactly one outbox row for its
// points credit. A second settlement of the same order is a no-op that
// still reports success. Points crediting is eventually consistent: a true
// result only means the intent is durably recorded.
func (s *Service) Settle(ctx context.Context, orderID, userID string, amount decimal.Decimal) (bool, error) {
	if orderID == "" {
		return false, errs.ErrInvalidOrderID
	}
	if !amount.IsPositive() {
		return false, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, amount)
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return false, err
	}

	ok, err := s.settle(txCtx, orderID, userID, amount)
	if err != nil {
		_ = s.uow.Rollback(txCtx)
		if errors.Is(err, errs.ErrDuplicateKey) {
			// Lost a race with a concurrent settlement of the same order;
			// the row exists, so the intent is recorded.
			return true, nil
		}
		return false, err
	}
	if !ok {
		_ = s.uow.Rollback(txCtx)
		return false, nil
	}
	if err := s.uow.Commit(txCtx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) settle(ctx context.Context, orderID, userID string, amount decimal.Decimal) (bool, error) {
	orders := s.uow.GetChargingOrderRepository(ctx)
	order, err := orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, fmt.Errorf("settle %s: %w", orderID, errs.ErrOrderNotFound)
	}
	if order.SettlementStatus == entity.Settled {
		s.logger.Info("Order already settled", map[string]any{"order_id": orderID})
		return true, nil
	}
	if order.Status != entity.OrderCompleted {
		s.logger.Warn("Settlement refused, order not completed", map[string]any{
			"order_id": orderID,
			"status":   string(order.Status),
		})
		return false, nil
	}
	if _, err := orders.MarkSettled(ctx, orderID); err != nil {
		return false, err
	}

	outbox := s.uow.GetOutboxRepository(ctx)
	exists, err := outbox.ExistsForBusinessID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Info("Outbox row already exists for order", map[string]any{"order_id": orderID})
		return true, nil
	}

	now := s.timeProvider.Now()
	points := s.policy.Calculate(amount)
	messageID := uuid.NewString()
	payload, err := json.Marshal(entity.PointsMessage{
		MessageID: messageID,
		OrderID:   orderID,
		UserID:    userID,
		Points:    points,
		CreatedAt: now,
	})
	if err != nil {
		return false, err
	}

	message := &entity.OutboxMessage{
		MessageID:     messageID,
		BusinessType:  entity.BusinessTypeOrderSettlement,
		BusinessID:    orderID,
		Payload:       payload,
		Status:        entity.OutboxPending,
		NextRetryTime: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := outbox.Create(ctx, message); err != nil {
		return false, err
	}

	s.logger.Info("Order settled, points credit recorded", map[string]any{
		"order_id": orderID,
		"user_id":  userID,
		"points":   points.String(),
	})
	return true, nil
}
