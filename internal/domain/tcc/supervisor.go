package tcc

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// OrderStateFunc reports the current charging order status for a tx id.
// The second result is false when no order exists for the transaction.
type OrderStateFunc func(ctx context.Context, txID string) (entity.OrderStatus, bool, error)

// Supervisor repairs transactions stuck between Try and a terminal phase.
// Each sweep unions the stuck tx ids reported by the participants, skips
// anything the coordinator already completed, and drives the remaining ids
// to commit or rollback. A per-id repair claim on the transaction row keeps
// concurrent supervisors and the in-flight synchronous path from repairing
// the same transaction at once.
type Supervisor struct {
	coordinator  *Coordinator
	participants []Participant
	finders      []StuckFinder
	orderState   OrderStateFunc
	records      persistence.TransactionRecordRepository
	timeout      time.Duration
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewSupervisor creates a new Supervisor
func NewSupervisor(
	coordinator *Coordinator,
	participants []Participant,
	finders []StuckFinder,
	orderState OrderStateFunc,
	records persistence.TransactionRecordRepository,
	timeout time.Duration,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
) *Supervisor {
	return &Supervisor{
		coordinator:  coordinator,
		participants: participants,
		finders:      finders,
		orderState:   orderState,
		records:      records,
		timeout:      timeout,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// RunOnce performs a single sweep. Per-id failures are logged and never
// block the rest of the sweep.
func (s *Supervisor) RunOnce(ctx context.Context) error {
	cutoff := s.timeProvider.Now().Add(-s.timeout)

	stuck := make(map[string]struct{})
	for _, finder := range s.finders {
		ids, err := finder.StuckTransactions(ctx, cutoff)
		if err != nil {
			s.logger.Error("Failed to query stuck transactions", map[string]any{
				"participant": finder.Name(),
				"error":       err.Error(),
			})
			continue
		}
		for _, id := range ids {
			stuck[id] = struct{}{}
		}
	}

	if len(stuck) == 0 {
		return nil
	}
	s.logger.Info("Stuck transactions found", map[string]any{"count": len(stuck)})

	for txID := range stuck {
		if err := s.repairOne(ctx, txID); err != nil {
			s.logger.Error("Failed to repair transaction", map[string]any{
				"tx_id": txID,
				"error": err.Error(),
			})
		}
	}
	return nil
}

// repairOne repairs a single transaction under a row claim
func (s *Supervisor) repairOne(ctx context.Context, txID string) error {
	completed, err := s.coordinator.IsCompleted(ctx, txID)
	if err != nil {
		return err
	}
	if completed {
		return nil
	}

	claimed, err := s.records.WithRepairClaim(ctx, txID, func(ctx context.Context) error {
		return s.repair(ctx, txID)
	})
	if err != nil {
		return err
	}
	if !claimed {
		// Another worker holds the row or finished it; next sweep rechecks.
		s.logger.Debug("Repair claim not acquired", map[string]any{"tx_id": txID})
	}
	return nil
}

// repair decides between commit and rollback from the current resource
// state. Unknown or failed states roll back (fail-closed); an order still
// IN_PROGRESS past the timeout is assumed to have eventually succeeded and
// is driven to commit.
func (s *Supervisor) repair(ctx context.Context, txID string) error {
	status, found, err := s.orderState(ctx, txID)
	if err != nil {
		return err
	}

	switch {
	case found && status == entity.OrderInProgress:
		s.logger.Info("Repairing stuck transaction via commit", map[string]any{"tx_id": txID})
		_, err := s.coordinator.Commit(ctx, txID, s.participants...)
		return err
	case found && (status == entity.OrderFailed || status == entity.OrderCanceled):
		s.logger.Info("Repairing stuck transaction via rollback", map[string]any{
			"tx_id":        txID,
			"order_status": string(status),
		})
		return s.coordinator.Rollback(ctx, txID, s.participants...)
	default:
		s.logger.Info("Repairing stuck transaction via rollback, state unknown", map[string]any{"tx_id": txID})
		return s.coordinator.Rollback(ctx, txID, s.participants...)
	}
}
