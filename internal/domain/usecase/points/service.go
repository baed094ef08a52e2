package points

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// Service applies loyalty point credits delivered by the broker. AddPoints
// is idempotent on the order id so at-least-once delivery never double
// credits a user.
type Service struct {
	uow          persistence.UnitOfWork
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewService creates a new points Service
func NewService(uow persistence.UnitOfWork, logger coreport.Logger, timeProvider coreport.TimeProvider) *Service {
	return &Service{
		uow:          uow,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// AddPoints credits points for an order in one atomic unit: ledger insert,
// running total upsert, and the originating outbox row marked PROCESSED.
// A repeat delivery for an already-credited order returns true with no
// state change.
func (s *Service) AddPoints(ctx context.Context, orderID, userID string, points decimal.Decimal) (bool, error) {
	if orderID == "" {
		return false, errs.ErrInvalidOrderID
	}
	if userID == "" {
		return false, errs.ErrInvalidUserID
	}
	if points.IsNegative() {
		return false, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, points)
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return false, err
	}

	repo := s.uow.GetPointsRepository(txCtx)
	applied, err := repo.LedgerExists(txCtx, orderID)
	if err != nil {
		_ = s.uow.Rollback(txCtx)
		return false, err
	}
	if applied {
		_ = s.uow.Rollback(txCtx)
		s.logger.Info("Points already credited for order", map[string]any{"order_id": orderID})
		return true, nil
	}

	if err := s.credit(txCtx, repo, orderID, userID, points); err != nil {
		_ = s.uow.Rollback(txCtx)
		return false, err
	}
	if err := s.uow.Commit(txCtx); err != nil {
		return false, err
	}

	s.logger.Info("Points credited", map[string]any{
		"order_id": orderID,
		"user_id":  userID,
		"points":   points.String(),
	})
	return true, nil
}

func (s *Service) credit(ctx context.Context, repo persistence.PointsRepository, orderID, userID string, points decimal.Decimal) error {
	if err := repo.CreateLedger(ctx, &entity.PointsTransaction{
		UserID:    userID,
		OrderID:   orderID,
		Points:    points,
		CreatedAt: s.timeProvider.Now(),
	}); err != nil {
		return err
	}
	if err := repo.AddToBalance(ctx, userID, points); err != nil {
		return err
	}
	// The outbox row may be absent when the credit originated elsewhere.
	return s.uow.GetOutboxRepository(ctx).MarkProcessed(ctx, orderID)
}

// GetUserPoints returns the user's running total, zero for unknown users
func (s *Service) GetUserPoints(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.uow.GetPointsRepository(ctx).GetBalance(ctx, userID)
}

// RecordFailedMessage quarantines a message the consumer could not process.
// The record is terminal and never auto-retried.
func (s *Service) RecordFailedMessage(ctx context.Context, message entity.PointsMessage, reason string) error {
	err := s.uow.GetFailedMessageRepository(ctx).Create(ctx, &entity.FailedMessage{
		MessageID: message.MessageID,
		OrderID:   message.OrderID,
		UserID:    message.UserID,
		Points:    message.Points,
		Error:     reason,
		CreatedAt: s.timeProvider.Now(),
	})
	if err != nil {
		return err
	}

	s.logger.Warn("Message quarantined for manual remediation", map[string]any{
		"message_id": message.MessageID,
		"order_id":   message.OrderID,
		"reason":     reason,
	})
	return nil
}
