package workflow

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/tcc"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/charging"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/payment"
)

// ChargeRequest starts one charging transaction
type ChargeRequest struct {
	UserID     string
	ResourceID string
	Amount     decimal.Decimal
}

// ChargeResult reports how the transaction ended
type ChargeResult struct {
	TxID      string
	Committed bool
}

// ChargeWorkflow runs the two-participant saga end to end: begin, try
// payment, try charging, then commit or rollback.
type ChargeWorkflow struct {
	coordinator *tcc.Coordinator
	payment     *payment.Participant
	charging    *charging.Participant
	logger      coreport.Logger
}

// NewChargeWorkflow creates a new ChargeWorkflow
func NewChargeWorkflow(
	coordinator *tcc.Coordinator,
	paymentParticipant *payment.Participant,
	chargingParticipant *charging.Participant,
	logger coreport.Logger,
) *ChargeWorkflow {
	return &ChargeWorkflow{
		coordinator: coordinator,
		payment:     paymentParticipant,
		charging:    chargingParticipant,
		logger:      logger,
	}
}

// Charge executes the saga. Any failure after Begin triggers a best-effort
// rollback; if the rollback itself fails, the reconciliation supervisor
// repairs the transaction on a later sweep.
func (w *ChargeWorkflow) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	txID, err := w.coordinator.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	result := &ChargeResult{TxID: txID}

	paymentOK, err := w.coordinator.Try(ctx, txID, w.payment, payment.TryArgs{
		UserID: req.UserID,
		Amount: req.Amount,
	})
	if err != nil {
		w.rollback(ctx, txID)
		return result, err
	}

	chargingOK := false
	if paymentOK {
		chargingOK, err = w.coordinator.Try(ctx, txID, w.charging, charging.TryArgs{
			ResourceID: req.ResourceID,
			UserID:     req.UserID,
			Amount:     req.Amount,
		})
		if err != nil {
			w.rollback(ctx, txID)
			return result, err
		}
	}

	if paymentOK && chargingOK {
		committed, err := w.coordinator.Commit(ctx, txID, w.payment, w.charging)
		if err != nil {
			return result, err
		}
		result.Committed = committed
		return result, nil
	}

	w.rollback(ctx, txID)
	return result, nil
}

func (w *ChargeWorkflow) rollback(ctx context.Context, txID string) {
	if err := w.coordinator.Rollback(ctx, txID, w.payment, w.charging); err != nil {
		w.logger.Error("Rollback failed, supervisor will repair", map[string]any{
			"tx_id": txID,
			"error": err.Error(),
		})
	}
}
