package persistence

import (
	"context"
)

// UnitOfWork coordinates one atomic unit of work across repositories.
// Begin returns a context carrying the unit; repositories obtained with
// that context join it, repositories obtained with a plain context operate
// directly on the store.
type UnitOfWork interface {
	// Begin starts a new atomic unit and returns a context bound to it
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the unit carried by the context
	Commit(ctx context.Context) error

	// Rollback aborts the unit carried by the context. Rolling back an
	// already-finished unit is not an error.
	Rollback(ctx context.Context) error

	// GetTransactionRecordRepository returns a record repository bound to the context
	GetTransactionRecordRepository(ctx context.Context) TransactionRecordRepository

	// GetActionLogRepository returns an action log repository bound to the context
	GetActionLogRepository(ctx context.Context) ActionLogRepository

	// GetAccountRepository returns an account repository bound to the context
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetPaymentHoldRepository returns a payment hold repository bound to the context
	GetPaymentHoldRepository(ctx context.Context) PaymentHoldRepository

	// GetChargingOrderRepository returns a charging order repository bound to the context
	GetChargingOrderRepository(ctx context.Context) ChargingOrderRepository

	// GetOutboxRepository returns an outbox repository bound to the context
	GetOutboxRepository(ctx context.Context) OutboxRepository

	// GetPointsRepository returns a points repository bound to the context
	GetPointsRepository(ctx context.Context) PointsRepository

	// GetFailedMessageRepository returns a failed message repository bound to the context
	GetFailedMessageRepository(ctx context.Context) FailedMessageRepository
}
