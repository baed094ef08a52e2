package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// ParticipantName is the payment participant's identity in action log rows
const ParticipantName = "payment"

// TryArgs carries the reservation request for the payment participant
type TryArgs struct {
	UserID string
	Amount decimal.Decimal
}

// Participant reserves funds for a charging transaction. Try debits the
// account and writes a HOLD; Confirm finalizes the hold; Cancel refunds it.
// All three run inside the caller's atomic unit and gate on the action log
// for idempotency.
type Participant struct {
	uow          persistence.UnitOfWork
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewParticipant creates a new payment Participant
func NewParticipant(uow persistence.UnitOfWork, logger coreport.Logger, timeProvider coreport.TimeProvider) *Participant {
	return &Participant{
		uow:          uow,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// Name identifies the participant
func (p *Participant) Name() string {
	return ParticipantName
}

// Try verifies the balance covers the amount, debits it, and records a
// HOLD. Insufficient balance is a validation failure: it returns false with
// a TRY FAILED log entry and no hold.
func (p *Participant) Try(ctx context.Context, txID string, args any) (bool, error) {
	req, ok := args.(TryArgs)
	if !ok {
		return false, fmt.Errorf("payment try: unexpected args type %T", args)
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
		p.logger.Info("Payment try already processed", map[string]any{"tx_id": txID})
		return true, nil
	}

	accounts := p.uow.GetAccountRepository(ctx)
	account, err := accounts.GetByUserID(ctx, req.UserID)
	if err != nil {
		return false, err
	}
	if account == nil || !account.CanDebit(req.Amount) {
		p.logger.Warn("Payment try rejected", map[string]any{
			"tx_id":   txID,
			"user_id": req.UserID,
			"amount":  req.Amount.String(),
		})
		return false, p.appendLog(ctx, txID, entity.PhaseTry, entity.OutcomeFailed, "insufficient balance or unknown account")
	}

	if err := accounts.Debit(ctx, req.UserID, req.Amount); err != nil {
		return false, err
	}

	now := p.timeProvider.Now()
	hold := &entity.PaymentHold{
		TxID:      txID,
		UserID:    req.UserID,
		Amount:    req.Amount,
		Status:    entity.HoldActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.uow.GetPaymentHoldRepository(ctx).Create(ctx, hold); err != nil {
		return false, err
	}
	if err := p.appendLog(ctx, txID, entity.PhaseTry, entity.OutcomeSuccess, ""); err != nil {
		return false, err
	}

	p.logger.Info("Funds held", map[string]any{
		"tx_id":   txID,
		"user_id": req.UserID,
		"amount":  req.Amount.String(),
	})
	return true, nil
}

// Confirm finalizes the hold. A missing hold is a logic inconsistency: the
// debit it would finalize never happened.
func (p *Participant) Confirm(ctx context.Context, txID string) (bool, error) {
	logs := p.uow.GetActionLogRepository(ctx)
	done, err := logs.HasSucceeded(ctx, txID, ParticipantName, entity.PhaseConfirm)
	if err != nil {
		return false, err
	}
	if done {
		p.logger.Info("Payment confirm already processed", map[string]any{"tx_id": txID})
		return true, nil
	}

	holds := p.uow.GetPaymentHoldRepository(ctx)
	hold, err := holds.GetActive(ctx, txID)
	if err != nil {
		return false, err
	}
	if hold == nil {
		return false, fmt.Errorf("payment confirm %s: %w", txID, errs.ErrMissingPrecursor)
	}

	moved, err := holds.Transition(ctx, txID, entity.HoldActive, entity.HoldConfirmed)
	if err != nil {
		return false, err
	}
	if !moved {
		return false, fmt.Errorf("payment confirm %s: hold transition lost", txID)
	}
	if err := p.appendLog(ctx, txID, entity.PhaseConfirm, entity.OutcomeSuccess, ""); err != nil {
		return false, err
	}

	p.logger.Info("Payment confirmed", map[string]any{"tx_id": txID})
	return true, nil
}

// Cancel refunds an active hold. Absence of a hold means the transaction
// never reserved anything here; that is already-canceled, not an error.
func (p *Participant) Cancel(ctx context.Context, txID string) (bool, error) {
	logs := p.uow.GetActionLogRepository(ctx)
	done, err := logs.HasSucceeded(ctx, txID, ParticipantName, entity.PhaseCancel)
	if err != nil {
		return false, err
	}
	if done {
		p.logger.Info("Payment cancel already processed", map[string]any{"tx_id": txID})
		return true, nil
	}

	holds := p.uow.GetPaymentHoldRepository(ctx)
	hold, err := holds.GetActive(ctx, txID)
	if err != nil {
		return false, err
	}
	if hold == nil {
		if err := p.appendLog(ctx, txID, entity.PhaseCancel, entity.OutcomeSuccess, "no hold to cancel"); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := p.uow.GetAccountRepository(ctx).Credit(ctx, hold.UserID, hold.Amount); err != nil {
		return false, err
	}
	moved, err := holds.Transition(ctx, txID, entity.HoldActive, entity.HoldCanceled)
	if err != nil {
		return false, err
	}
	if !moved {
		return false, fmt.Errorf("payment cancel %s: hold transition lost", txID)
	}
	if err := p.appendLog(ctx, txID, entity.PhaseCancel, entity.OutcomeSuccess, "funds refunded"); err != nil {
		return false, err
	}

	p.logger.Info("Payment canceled and refunded", map[string]any{
		"tx_id":   txID,
		"user_id": hold.UserID,
		"amount":  hold.Amount.String(),
	})
	return true, nil
}

// StuckTransactions reports tx ids whose try succeeded before the cutoff
// without a terminal confirm or cancel entry
func (p *Participant) StuckTransactions(ctx context.Context, cutoff time.Time) ([]string, error) {
	return p.uow.GetActionLogRepository(ctx).FindUnfinished(ctx, ParticipantName, cutoff)
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
