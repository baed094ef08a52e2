package charging

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// ParticipantName is the charging participant's identity in action log rows
const ParticipantName = "charging"

// TryArgs carries the reservation request for the charging participant
type TryArgs struct {
	ResourceID string
	UserID     string
	Amount     decimal.Decimal
}

// OutcomeFunc probes whether the charging resource accepted the session.
// The production default asks the charge point; tests inject a fixed result.
type OutcomeFunc func(order *entity.ChargingOrder) bool

// RandomOutcome simulates the charge point response with a 70% success rate
func RandomOutcome(_ *entity.ChargingOrder) bool {
	return rand.Float64() > 0.3
}

// FixedRateOutcome simulates the charge point response with the given
// success rate
func FixedRateOutcome(rate float64) OutcomeFunc {
	return func(_ *entity.ChargingOrder) bool {
		return rand.Float64() < rate
	}
}

// Participant reserves the charging resource. Try creates the order and
// probes the outcome; Confirm completes the session; Cancel voids it.
type Participant struct {
	uow          persistence.UnitOfWork
	outcome      OutcomeFunc
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewParticipant creates a new charging Participant
func NewParticipant(uow persistence.UnitOfWork, outcome OutcomeFunc, logger coreport.Logger, timeProvider coreport.TimeProvider) *Participant {
	if outcome == nil {
		outcome = RandomOutcome
	}
	return &Participant{
		uow:          uow,
		outcome:      outcome,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Name identifies the participant
func (p *Participant) Name() string {
	return ParticipantName
}

// Try creates the charging order and starts the session. A rejected session
// leaves the order FAILED and returns false with a TRY FAILED log entry.
func (p *Participant) Try(ctx context.Context, txID string, args any) (bool, error) {
	req, ok := args.(TryArgs)
	if !ok {
		return false, fmt.Errorf("charging try: unexpected args type %T", args)
	}
	if req.UserID == "" {
		return false, errs.ErrInvalidUserID
	}
	if !req.Amount.IsPositive() {
		return false, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, req.Amount)
	}

	logs := p.uow.GetActionLogRepository(ctx)
	done, err := logs.HasSucceeded(ctx, txID, ParticipantName, entity.PhaseTry)
	if err != nil {
		return false, err
	}
	if done {
		p.logger.Info("Charging try already processed", map[string]any{"tx_id": txID})
		return true, nil
	}

	now := p.timeProvider.Now()
	order := &entity.ChargingOrder{
		OrderID:          uuid.NewString(),
		TxID:             txID,
		ResourceID:       req.ResourceID,
		UserID:           req.UserID,
		Amount:           req.Amount,
		Status:           entity.OrderInit,
		SettlementStatus: entity.Unsettled,
		CreatedAt:        now,
	}

	orders := p.uow.GetChargingOrderRepository(ctx)
	if err := orders.Create(ctx, order); err != nil {
		return false, err
	}

	if !p.outcome(order) {
		if _, err := orders.Transition(ctx, txID, []entity.OrderStatus{entity.OrderInit}, entity.OrderFailed); err != nil {
			return false, err
		}
		p.logger.Warn("Charging session rejected", map[string]any{
			"tx_id":    txID,
			"order_id": order.OrderID,
		})
		return false, p.appendLog(ctx, txID, entity.PhaseTry, entity.OutcomeFailed, "charging attempt failed")
	}

	if _, err := orders.Transition(ctx, txID, []entity.OrderStatus{entity.OrderInit}, entity.OrderInProgress); err != nil {
		return false, err
	}
	if err := p.appendLog(ctx, txID, entity.PhaseTry, entity.OutcomeSuccess, "charging started"); err != nil {
		return false, err
	}

	p.logger.Info("Charging session started", map[string]any{
		"tx_id":       txID,
		"order_id":    order.OrderID,
		"resource_id": req.ResourceID,
	})
	return true, nil
}

// Confirm completes the in-progress session. A transaction without an
// in-progress order has nothing to finalize, which is a logic error.
func (p *Participant) Confirm(ctx context.Context, txID string) (bool, error) {
	logs := p.uow.GetActionLogRepository(ctx)
	done, err := logs.HasSucceeded(ctx, txID, ParticipantName, entity.PhaseConfirm)
	if err != nil {
		return false, err
	}
	if done {
		p.logger.Info("Charging confirm already processed", map[string]any{"tx_id": txID})
		return true, nil
	}

	orders := p.uow.GetChargingOrderRepository(ctx)
	order, err := orders.GetByTxID(ctx, txID)
	if err != nil {
		return false, err
	}
	if order == nil || order.Status != entity.OrderInProgress {
		return false, fmt.Errorf("charging confirm %s: %w", txID, errs.ErrMissingPrecursor)
	}

	moved, err := orders.Transition(ctx, txID, []entity.OrderStatus{entity.OrderInProgress}, entity.OrderCompleted)
	if err != nil {
		return false, err
	}
	if !moved {
		return false, fmt.Errorf("charging confirm %s: order transition lost", txID)
	}
	if err := p.appendLog(ctx, txID, entity.PhaseConfirm, entity.OutcomeSuccess, "charging completed"); err != nil {
		return false, err
	}

	p.logger.Info("Charging completed", map[string]any{"tx_id": txID, "order_id": order.OrderID})
	return true, nil
}

// Cancel voids a cancelable order. Absence of a cancelable order succeeds
// with no state change.
func (p *Participant) Cancel(ctx context.Context, txID string) (bool, error) {
	logs := p.uow.GetActionLogRepository(ctx)
	done, err := logs.HasSucceeded(ctx, txID, ParticipantName, entity.PhaseCancel)
	if err != nil {
		return false, err
	}
	if done {
		p.logger.Info("Charging cancel already processed", map[string]any{"tx_id": txID})
		return true, nil
	}

	orders := p.uow.GetChargingOrderRepository(ctx)
	order, err := orders.GetByTxID(ctx, txID)
	if err != nil {
		return false, err
	}
	if order == nil || !order.CanCancel() {
		if err := p.appendLog(ctx, txID, entity.PhaseCancel, entity.OutcomeSuccess, "no order to cancel"); err != nil {
			return false, err
		}
		return true, nil
	}

	moved, err := orders.Transition(ctx, txID, []entity.OrderStatus{entity.OrderInit, entity.OrderInProgress}, entity.OrderCanceled)
	if err != nil {
		return false, err
	}
	if !moved {
		return false, fmt.Errorf("charging cancel %s: order transition lost", txID)
	}
	if err := p.appendLog(ctx, txID, entity.PhaseCancel, entity.OutcomeSuccess, "charging canceled"); err != nil {
		return false, err
	}

	p.logger.Info("Charging canceled", map[string]any{"tx_id": txID, "order_id": order.OrderID})
	return true, nil
}

// StuckTransactions reports tx ids whose try succeeded before the cutoff
// without a terminal confirm or cancel entry
func (p *Participant) StuckTransactions(ctx context.Context, cutoff time.Time) ([]string, error) {
	return p.uow.GetActionLogRepository(ctx).FindUnfinished(ctx, ParticipantName, cutoff)
}

// OrderState reports the order status for a tx id, for the reconciliation
// supervisor's repair decision
func (p *Participant) OrderState(ctx context.Context, txID string) (entity.OrderStatus, bool, error) {
	order, err := p.uow.GetChargingOrderRepository(ctx).GetByTxID(ctx, txID)
	if err != nil {
		return "", false, err
	}
	if order == nil {
		return "", false, nil
	}
	return order.Status, true, nil
}

func (p *Participant) appendLog(ctx context.Context, txID string, phase entity.Phase, outcome entity.Outcome, note string) error {
	return p.uow.GetActionLogRepository(ctx).Append(ctx, &entity.ActionLogEntry{
		TxID:        txID,
		Participant: ParticipantName,
		Phase:       phase,
		Outcome:     outcome,
		Note:        note,
		CreatedAt:   p.timeProvider.Now(),
	})
}
