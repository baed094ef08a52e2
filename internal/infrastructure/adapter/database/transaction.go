package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/repository"
)

// UnitOfWork implements the unit of work pattern for database transactions.
// Correctness under concurrency comes from conditional updates and unique
// indexes, so units run at the store's default isolation level.
type UnitOfWork struct {
	db           *gorm.DB
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewUnitOfWork creates a new UnitOfWork instance
func NewUnitOfWork(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) persistence.UnitOfWork {
	return &UnitOfWork{
		db:           db,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Begin starts a new database transaction
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.logger.Debug("Beginning database transaction", nil)

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.logger.Error("Failed to begin transaction", map[string]any{"error": tx.Error.Error()})
		return ctx, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// Store transaction in context
	return repository.ContextWithTx(ctx, tx), nil
}

// Commit commits the current transaction
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx, ok := repository.TxFromContext(ctx)
	if !ok {
		return fmt.Errorf("no transaction found in context")
	}

	u.logger.Debug("Committing database transaction", nil)
	if err := tx.Commit().Error; err != nil {
		u.logger.Error("Failed to commit transaction", map[string]any{"error": err.Error()})
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Rollback rolls back the current transaction with improved error handling
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx, ok := repository.TxFromContext(ctx)
	if !ok {
		return fmt.Errorf("no transaction found in context")
	}

	u.logger.Debug("Rolling back database transaction", nil)

	err := tx.Rollback().Error

	// If the error indicates the transaction was already committed or rolled back,
	// log it as a warning but don't return an error
	if err != nil && strings.Contains(err.Error(), "already been committed or rolled back") {
		u.logger.Warn("Transaction has already been committed or rolled back", map[string]any{
			"error": err.Error(),
		})
		return nil
	}

	if err != nil {
		u.logger.Error("Failed to rollback transaction", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// GetTransactionRecordRepository returns a transaction record repository in the current transaction
func (u *UnitOfWork) GetTransactionRecordRepository(ctx context.Context) persistence.TransactionRecordRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewTransactionRecordRepository(db, u.timeProvider, u.logger)
}

// GetActionLogRepository returns an action log repository in the current transaction
func (u *UnitOfWork) GetActionLogRepository(ctx context.Context) persistence.ActionLogRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewActionLogRepository(db, u.logger)
}

// GetAccountRepository returns an account repository in the current transaction
func (u *UnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewAccountRepository(db, u.timeProvider, u.logger)
}

// GetPaymentHoldRepository returns a payment hold repository in the current transaction
func (u *UnitOfWork) GetPaymentHoldRepository(ctx context.Context) persistence.PaymentHoldRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewPaymentHoldRepository(db, u.timeProvider, u.logger)
}

// GetChargingOrderRepository returns a charging order repository in the current transaction
func (u *UnitOfWork) GetChargingOrderRepository(ctx context.Context) persistence.ChargingOrderRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewChargingOrderRepository(db, u.timeProvider, u.logger)
}

// GetOutboxRepository returns an outbox repository in the current transaction
func (u *UnitOfWork) GetOutboxRepository(ctx context.Context) persistence.OutboxRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewOutboxRepository(db, u.timeProvider, u.logger)
}

// GetPointsRepository returns a points repository in the current transaction
func (u *UnitOfWork) GetPointsRepository(ctx context.Context) persistence.PointsRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewPointsRepository(db, u.timeProvider, u.logger)
}

// GetFailedMessageRepository returns a failed message repository in the current transaction
func (u *UnitOfWork) GetFailedMessageRepository(ctx context.Context) persistence.FailedMessageRepository {
	db := u.getDbFromContext(ctx)
	return repository.NewFailedMessageRepository(db, u.logger)
}

// getDbFromContext retrieves the database instance from context
func (u *UnitOfWork) getDbFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := repository.TxFromContext(ctx); ok {
		return tx
	}
	return u.db.WithContext(ctx)
}
