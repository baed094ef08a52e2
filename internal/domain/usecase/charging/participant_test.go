package charging

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/logger"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time                  { return c.now }
func (c *fakeClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

type memActionLog struct {
	entries []*entity.ActionLogEntry
}

func (l *memActionLog) Append(_ context.Context, entry *entity.ActionLogEntry) error {
	copied := *entry
	l.entries = append(l.entries, &copied)
	return nil
}

func (l *memActionLog) HasSucceeded(_ context.Context, txID, participant string, phase entity.Phase) (bool, error) {
	for _, e := range l.entries {
		if e.TxID == txID && e.Participant == participant && e.Phase == phase && e.Outcome == entity.OutcomeSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (l *memActionLog) FindUnfinished(_ context.Context, participant string, cutoff time.Time) ([]string, error) {
	var ids []string
	for _, e := range l.entries {
		if e.Participant != participant || e.Phase != entity.PhaseTry ||
			e.Outcome != entity.OutcomeSuccess || !e.CreatedAt.Before(cutoff) {
			continue
		}
		finished := false
		for _, f := range l.entries {
			if f.TxID == e.TxID && f.Participant == participant && f.Outcome == entity.OutcomeSuccess &&
				(f.Phase == entity.PhaseConfirm || f.Phase == entity.PhaseCancel) {
				finished = true
				break
			}
		}
		if !finished {
			ids = append(ids, e.TxID)
		}
	}
	return ids, nil
}

type memOrders struct {
	orders map[string]*entity.ChargingOrder // keyed by tx id
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]*entity.ChargingOrder{}}
}

func (r *memOrders) Create(_ context.Context, order *entity.ChargingOrder) error {
	if _, ok := r.orders[order.TxID]; ok {
		return errs.ErrDuplicateKey
	}
	copied := *order
	r.orders[order.TxID] = &copied
	return nil
}

func (r *memOrders) GetByTxID(_ context.Context, txID string) (*entity.ChargingOrder, error) {
	order, ok := r.orders[txID]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (r *memOrders) GetByOrderID(_ context.Context, orderID string) (*entity.ChargingOrder, error) {
	for _, order := range r.orders {
		if order.OrderID == orderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memOrders) Transition(_ context.Context, txID string, from []entity.OrderStatus, to entity.OrderStatus) (bool, error) {
	order, ok := r.orders[txID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if order.Status == f {
			order.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrders) MarkSettled(_ context.Context, orderID string) (bool, error) {
	for _, order := range r.orders {
		if order.OrderID == orderID && order.Status == entity.OrderCompleted && order.SettlementStatus == entity.Unsettled {
			order.SettlementStatus = entity.Settled
			return true, nil
		}
	}
	return false, nil
}

type memUOW struct {
	logs   *memActionLog
	orders *memOrders
}

func newMemUOW() *memUOW {
	return &memUOW{logs: &memActionLog{}, orders: newMemOrders()}
}

func (u *memUOW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *memUOW) Commit(context.Context) error                       { return nil }
func (u *memUOW) Rollback(context.Context) error                     { return nil }

func (u *memUOW) GetTransactionRecordRepository(context.Context) persistence.TransactionRecordRepository {
	return nil
}
func (u *memUOW) GetActionLogRepository(context.Context) persistence.ActionLogRepository {
	return u.logs
}
func (u *memUOW) GetAccountRepository(context.Context) persistence.AccountRepository { return nil }
func (u *memUOW) GetPaymentHoldRepository(context.Context) persistence.PaymentHoldRepository {
	return nil
}
func (u *memUOW) GetChargingOrderRepository(context.Context) persistence.ChargingOrderRepository {
	return u.orders
}
func (u *memUOW) GetOutboxRepository(context.Context) persistence.OutboxRepository { return nil }
func (u *memUOW) GetPointsRepository(context.Context) persistence.PointsRepository { return nil }
func (u *memUOW) GetFailedMessageRepository(context.Context) persistence.FailedMessageRepository {
	return nil
}

func acceptAll(*entity.ChargingOrder) bool { return true }
func rejectAll(*entity.ChargingOrder) bool { return false }

func newTestParticipant(outcome OutcomeFunc) (*Participant, *memUOW) {
	uow := newMemUOW()
	return NewParticipant(uow, outcome, logger.NewNoopLogger(), newFakeClock()), uow
}

func tryArgs() TryArgs {
	return TryArgs{
		ResourceID: "cp-001",
		UserID:     "1001",
		Amount:     decimal.RequireFromString("25.00"),
	}
}

func TestChargingTryStartsSession(t *testing.T) {
	participant, uow := newTestParticipant(acceptAll)

	ok, err := participant.Try(context.Background(), "tx-1", tryArgs())
	require.NoError(t, err)
	assert.True(t, ok)

	order := uow.orders.orders["tx-1"]
	require.NotNil(t, order)
	assert.Equal(t, entity.OrderInProgress, order.Status)
	assert.Equal(t, entity.Unsettled, order.SettlementStatus)
}

func TestChargingTryRejectedSessionFailsOrder(t *testing.T) {
	participant, uow := newTestParticipant(rejectAll)

	ok, err := participant.Try(context.Background(), "tx-1", tryArgs())
	require.NoError(t, err)
	assert.False(t, ok)

	order := uow.orders.orders["tx-1"]
	require.NotNil(t, order)
	assert.Equal(t, entity.OrderFailed, order.Status)
}

func TestChargingTryIdempotent(t *testing.T) {
	participant, uow := newTestParticipant(acceptAll)

	ok, err := participant.Try(context.Background(), "tx-1", tryArgs())
	require.NoError(t, err)
	require.True(t, ok)
	firstOrderID := uow.orders.orders["tx-1"].OrderID

	ok, err = participant.Try(context.Background(), "tx-1", tryArgs())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, firstOrderID, uow.orders.orders["tx-1"].OrderID)
}

func TestChargingConfirmCompletesOrder(t *testing.T) {
	participant, uow := newTestParticipant(acceptAll)

	_, err := participant.Try(context.Background(), "tx-1", tryArgs())
	require.NoError(t, err)

	ok, err := participant.Confirm(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.OrderCompleted, uow.orders.orders["tx-1"].Status)

	// Idempotent re-issue
	ok, err = participant.Confirm(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChargingConfirmWithoutOrderFails(t *testing.T) {
	participant, _ := newTestParticipant(acceptAll)

	ok, err := participant.Confirm(context.Background(), "tx-unknown")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errs.ErrMissingPrecursor)
}

func TestChargingCancelVoidsOrder(t *testing.T) {
	participant, uow := newTestParticipant(acceptAll)

	_, err := participant.Try(context.Background(), "tx-1", tryArgs())
	require.NoError(t, err)

	ok, err := participant.Cancel(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.OrderCanceled, uow.orders.orders["tx-1"].Status)
}

func TestChargingCancelWithoutCancelableOrderSucceeds(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, p *Participant, uow *memUOW)
	}{
		{
			name:  "no order exists",
			setup: func(*testing.T, *Participant, *memUOW) {},
		},
		{
			name: "order already completed",
			setup: func(t *testing.T, p *Participant, uow *memUOW) {
				_, err := p.Try(context.Background(), "tx-1", tryArgs())
				require.NoError(t, err)
				_, err = p.Confirm(context.Background(), "tx-1")
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			participant, uow := newTestParticipant(acceptAll)
			tt.setup(t, participant, uow)

			ok, err := participant.Cancel(context.Background(), "tx-1")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestChargingOrderState(t *testing.T) {
	participant, _ := newTestParticipant(acceptAll)

	_, found, err := participant.OrderState(context.Background(), "tx-unknown")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = participant.Try(context.Background(), "tx-1", tryArgs())
	require.NoError(t, err)

	status, found, err := participant.OrderState(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entity.OrderInProgress, status)
}

func TestFixedRateOutcome(t *testing.T) {
	always := FixedRateOutcome(1.0)
	never := FixedRateOutcome(0.0)

	for i := 0; i < 50; i++ {
		assert.True(t, always(nil))
		assert.False(t, never(nil))
	}
}
