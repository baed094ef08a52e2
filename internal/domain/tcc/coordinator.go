package tcc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// Coordinator orchestrates Try-Confirm-Cancel transactions over a set of
// participants. Commit is saga-style, not ACID-atomic across participants:
// each phase call runs in its own atomic unit and relies on participant
// idempotency to make re-issue safe.
type Coordinator struct {
	uow          persistence.UnitOfWork
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(uow persistence.UnitOfWork, logger coreport.Logger, timeProvider coreport.TimeProvider) *Coordinator {
	return &Coordinator{
		uow:          uow,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Begin starts a new transaction and persists its INIT record
func (c *Coordinator) Begin(ctx context.Context) (string, error) {
	txID := uuid.NewString()
	now := c.timeProvider.Now()

	record := &entity.TransactionRecord{
		TxID:      txID,
		Status:    entity.TxInit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.uow.GetTransactionRecordRepository(ctx).Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create transaction record: %w", err)
	}

	c.logger.Info("Transaction started", map[string]any{"tx_id": txID})
	return txID, nil
}

// Try delegates the Try phase to the participant and persists the
// TRY_SUCCESS or TRY_FAILED decision in the same atomic unit. A
// persistence failure aborts the unit and propagates.
func (c *Coordinator) Try(ctx context.Context, txID string, participant Participant, args any) (bool, error) {
	txCtx, err := c.uow.Begin(ctx)
	if err != nil {
		return false, err
	}

	ok, err := participant.Try(txCtx, txID, args)
	if err != nil {
		_ = c.uow.Rollback(txCtx)
		return false, fmt.Errorf("try failed for %s: %w", participant.Name(), err)
	}

	status := entity.TxTrySuccess
	if !ok {
		status = entity.TxTryFailed
	}
	if err := c.uow.GetTransactionRecordRepository(txCtx).UpdateStatus(txCtx, txID, status); err != nil {
		_ = c.uow.Rollback(txCtx)
		return false, fmt.Errorf("failed to persist try decision: %w", err)
	}
	if err := c.uow.Commit(txCtx); err != nil {
		return false, err
	}

	c.logger.Info("Try phase finished", map[string]any{
		"tx_id":       txID,
		"participant": participant.Name(),
		"status":      string(status),
	})
	return ok, nil
}

// Commit confirms every participant in the given order. It requires the
// current status to be TRY_SUCCESS and returns false without side effects
// otherwise. It stops at the first confirm failure, leaving the record in
// a non-terminal status for the supervisor to resolve, and marks the
// transaction COMMITTED only when every confirm succeeded.
func (c *Coordinator) Commit(ctx context.Context, txID string, participants ...Participant) (bool, error) {
	record, err := c.uow.GetTransactionRecordRepository(ctx).GetByTxID(ctx, txID)
	if err != nil {
		return false, err
	}
	if record.Status != entity.TxTrySuccess {
		c.logger.Warn("Commit refused, transaction is not in TRY_SUCCESS", map[string]any{
			"tx_id":  txID,
			"status": string(record.Status),
		})
		return false, nil
	}

	for _, p := range participants {
		ok, err := c.confirmOne(ctx, txID, p)
		if err != nil {
			return false, fmt.Errorf("confirm failed for %s: %w", p.Name(), err)
		}
		if !ok {
			c.logger.Error("Confirm rejected, commit left for reconciliation", map[string]any{
				"tx_id":       txID,
				"participant": p.Name(),
			})
			return false, nil
		}
	}

	if err := c.uow.GetTransactionRecordRepository(ctx).UpdateStatus(ctx, txID, entity.TxCommitted); err != nil {
		return false, fmt.Errorf("failed to mark transaction committed: %w", err)
	}

	c.logger.Info("Transaction committed", map[string]any{"tx_id": txID})
	return true, nil
}

// Rollback cancels every participant regardless of individual failures and
// then unconditionally marks the transaction ROLLED_BACK. Cancel errors are
// contained per participant; compensation is re-issued by the supervisor if
// anything was left behind.
func (c *Coordinator) Rollback(ctx context.Context, txID string, participants ...Participant) error {
	for _, p := range participants {
		if err := c.cancelOne(ctx, txID, p); err != nil {
			c.logger.Error("Cancel failed, continuing rollback", map[string]any{
				"tx_id":       txID,
				"participant": p.Name(),
				"error":       err.Error(),
			})
		}
	}

	if err := c.uow.GetTransactionRecordRepository(ctx).UpdateStatus(ctx, txID, entity.TxRolledBack); err != nil {
		return fmt.Errorf("failed to mark transaction rolled back: %w", err)
	}

	c.logger.Info("Transaction rolled back", map[string]any{"tx_id": txID})
	return nil
}

// IsCompleted reports whether the transaction reached a terminal status
func (c *Coordinator) IsCompleted(ctx context.Context, txID string) (bool, error) {
	record, err := c.uow.GetTransactionRecordRepository(ctx).GetByTxID(ctx, txID)
	if err != nil {
		return false, err
	}
	return record.Status.IsTerminal(), nil
}

// confirmOne runs a participant's Confirm in its own atomic unit
func (c *Coordinator) confirmOne(ctx context.Context, txID string, p Participant) (bool, error) {
	txCtx, err := c.uow.Begin(ctx)
	if err != nil {
		return false, err
	}

	ok, err := p.Confirm(txCtx, txID)
	if err != nil || !ok {
		_ = c.uow.Rollback(txCtx)
		return false, err
	}
	if err := c.uow.Commit(txCtx); err != nil {
		return false, err
	}
	return true, nil
}

// cancelOne runs a participant's Cancel in its own atomic unit
func (c *Coordinator) cancelOne(ctx context.Context, txID string, p Participant) error {
	txCtx, err := c.uow.Begin(ctx)
	if err != nil {
		return err
	}

	ok, err := p.Cancel(txCtx, txID)
	if err != nil {
		_ = c.uow.Rollback(txCtx)
		return err
	}
	if !ok {
		_ = c.uow.Rollback(txCtx)
		return fmt.Errorf("cancel rejected by %s", p.Name())
	}
	return c.uow.Commit(txCtx)
}
