package workflow

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
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/tcc"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/charging"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/payment"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/logger"
)

// The fakes below back the whole saga in memory so Charge can be driven end
// to end: coordinator, both participants, and their repositories.

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time                  { return c.now }
func (c *fakeClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

type memStore struct {
	records  map[string]*entity.TransactionRecord
	entries  []*entity.ActionLogEntry
	accounts map[string]*entity.Account
	holds    map[string]*entity.PaymentHold
	orders   map[string]*entity.ChargingOrder
}

func newMemStore() *memStore {
	return &memStore{
		records:  map[string]*entity.TransactionRecord{},
		accounts: map[string]*entity.Account{},
		holds:    map[string]*entity.PaymentHold{},
		orders:   map[string]*entity.ChargingOrder{},
	}
}

type memRecords struct{ s *memStore }

func (r *memRecords) Create(_ context.Context, record *entity.TransactionRecord) error {
	if _, ok := r.s.records[record.TxID]; ok {
		return errs.ErrDuplicateKey
	}
	copied := *record
	r.s.records[record.TxID] = &copied
	return nil
}

func (r *memRecords) GetByTxID(_ context.Context, txID string) (*entity.TransactionRecord, error) {
	record, ok := r.s.records[txID]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *memRecords) UpdateStatus(_ context.Context, txID string, status entity.TxStatus) error {
	record, ok := r.s.records[txID]
	if !ok {
		return errs.ErrTransactionNotFound
	}
	// Terminal records are immutable; a late update is dropped.
	if record.Status.IsTerminal() {
		return nil
	}
	record.Status = status
	return nil
}

func (r *memRecords) WithRepairClaim(ctx context.Context, txID string, fn func(ctx context.Context) error) (bool, error) {
	record, ok := r.s.records[txID]
	if !ok || record.Status.IsTerminal() {
		return false, nil
	}
	return true, fn(ctx)
}

type memLogs struct{ s *memStore }

func (l *memLogs) Append(_ context.Context, entry *entity.ActionLogEntry) error {
	copied := *entry
	l.s.entries = append(l.s.entries, &copied)
	return nil
}

func (l *memLogs) HasSucceeded(_ context.Context, txID, participant string, phase entity.Phase) (bool, error) {
	for _, e := range l.s.entries {
		if e.TxID == txID && e.Participant == participant && e.Phase == phase && e.Outcome == entity.OutcomeSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (l *memLogs) FindUnfinished(_ context.Context, participant string, cutoff time.Time) ([]string, error) {
	var ids []string
	for _, e := range l.s.entries {
		if e.Participant != participant || e.Phase != entity.PhaseTry ||
			e.Outcome != entity.OutcomeSuccess || !e.CreatedAt.Before(cutoff) {
			continue
		}
		finished := false
		for _, f := range l.s.entries {
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

type memAccounts struct{ s *memStore }

func (r *memAccounts) GetByUserID(_ context.Context, userID string) (*entity.Account, error) {
	account, ok := r.s.accounts[userID]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *memAccounts) Create(_ context.Context, account *entity.Account) error {
	copied := *account
	r.s.accounts[account.UserID] = &copied
	return nil
}

func (r *memAccounts) Debit(_ context.Context, userID string, amount decimal.Decimal) error {
	account, ok := r.s.accounts[userID]
	if !ok {
		return errs.ErrAccountNotFound
	}
	if account.Balance.LessThan(amount) {
		return errs.ErrInsufficientBalance
	}
	account.Balance = account.Balance.Sub(amount)
	return nil
}

func (r *memAccounts) Credit(_ context.Context, userID string, amount decimal.Decimal) error {
	account, ok := r.s.accounts[userID]
	if !ok {
		return errs.ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(amount)
	return nil
}

type memHolds struct{ s *memStore }

func (r *memHolds) Create(_ context.Context, hold *entity.PaymentHold) error {
	copied := *hold
	r.s.holds[hold.TxID] = &copied
	return nil
}

func (r *memHolds) GetActive(_ context.Context, txID string) (*entity.PaymentHold, error) {
	hold, ok := r.s.holds[txID]
	if !ok || hold.Status != entity.HoldActive {
		return nil, nil
	}
	copied := *hold
	return &copied, nil
}

func (r *memHolds) Transition(_ context.Context, txID string, from, to entity.HoldStatus) (bool, error) {
	hold, ok := r.s.holds[txID]
	if !ok || hold.Status != from {
		return false, nil
	}
	hold.Status = to
	return true, nil
}

type memOrders struct{ s *memStore }

func (r *memOrders) Create(_ context.Context, order *entity.ChargingOrder) error {
	copied := *order
	r.s.orders[order.TxID] = &copied
	return nil
}

func (r *memOrders) GetByTxID(_ context.Context, txID string) (*entity.ChargingOrder, error) {
	order, ok := r.s.orders[txID]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (r *memOrders) GetByOrderID(_ context.Context, orderID string) (*entity.ChargingOrder, error) {
	for _, order := range r.s.orders {
		if order.OrderID == orderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memOrders) Transition(_ context.Context, txID string, from []entity.OrderStatus, to entity.OrderStatus) (bool, error) {
	order, ok := r.s.orders[txID]
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
	for _, order := range r.s.orders {
		if order.OrderID == orderID && order.Status == entity.OrderCompleted && order.SettlementStatus == entity.Unsettled {
			order.SettlementStatus = entity.Settled
			return true, nil
		}
	}
	return false, nil
}

type memUOW struct{ s *memStore }

func (u *memUOW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *memUOW) Commit(context.Context) error                       { return nil }
func (u *memUOW) Rollback(context.Context) error                     { return nil }

func (u *memUOW) GetTransactionRecordRepository(context.Context) persistence.TransactionRecordRepository {
	return &memRecords{s: u.s}
}
func (u *memUOW) GetActionLogRepository(context.Context) persistence.ActionLogRepository {
	return &memLogs{s: u.s}
}
func (u *memUOW) GetAccountRepository(context.Context) persistence.AccountRepository {
	return &memAccounts{s: u.s}
}
func (u *memUOW) GetPaymentHoldRepository(context.Context) persistence.PaymentHoldRepository {
	return &memHolds{s: u.s}
}
func (u *memUOW) GetChargingOrderRepository(context.Context) persistence.ChargingOrderRepository {
	return &memOrders{s: u.s}
}
func (u *memUOW) GetOutboxRepository(context.Context) persistence.OutboxRepository { return nil }
func (u *memUOW) GetPointsRepository(context.Context) persistence.PointsRepository { return nil }
func (u *memUOW) GetFailedMessageRepository(context.Context) persistence.FailedMessageRepository {
	return nil
}

type workflowFixture struct {
	workflow *ChargeWorkflow
	store    *memStore
}

func newWorkflowFixture(t *testing.T, outcome charging.OutcomeFunc) *workflowFixture {
	t.Helper()
	store := newMemStore()
	uow := &memUOW{s: store}
	log := logger.NewNoopLogger()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	coordinator := tcc.NewCoordinator(uow, log, clock)
	paymentParticipant := payment.NewParticipant(uow, log, clock)
	chargingParticipant := charging.NewParticipant(uow, outcome, log, clock)

	store.accounts["1001"] = &entity.Account{
		UserID:  "1001",
		Balance: decimal.RequireFromString("100.00"),
	}

	return &workflowFixture{
		workflow: NewChargeWorkflow(coordinator, paymentParticipant, chargingParticipant, log),
		store:    store,
	}
}

func chargeRequest(amount string) ChargeRequest {
	return ChargeRequest{
		UserID:     "1001",
		ResourceID: "cp-001",
		Amount:     decimal.RequireFromString(amount),
	}
}

func TestChargeCommitsHappyPath(t *testing.T) {
	f := newWorkflowFixture(t, func(*entity.ChargingOrder) bool { return true })

	result, err := f.workflow.Charge(context.Background(), chargeRequest("40.00"))
	require.NoError(t, err)
	assert.True(t, result.Committed)

	assert.Equal(t, entity.TxCommitted, f.store.records[result.TxID].Status)
	assert.Equal(t, entity.HoldConfirmed, f.store.holds[result.TxID].Status)
	assert.Equal(t, entity.OrderCompleted, f.store.orders[result.TxID].Status)
	assert.True(t, f.store.accounts["1001"].Balance.Equal(decimal.RequireFromString("60.00")))
}

func TestChargeRollsBackOnInsufficientBalance(t *testing.T) {
	f := newWorkflowFixture(t, func(*entity.ChargingOrder) bool { return true })

	result, err := f.workflow.Charge(context.Background(), chargeRequest("500.00"))
	require.NoError(t, err)
	assert.False(t, result.Committed)

	assert.Equal(t, entity.TxRolledBack, f.store.records[result.TxID].Status)
	// Nothing was reserved, so nothing changed
	assert.True(t, f.store.accounts["1001"].Balance.Equal(decimal.RequireFromString("100.00")))
	assert.Empty(t, f.store.orders)
}

func TestChargeRefundsWhenChargingRejects(t *testing.T) {
	f := newWorkflowFixture(t, func(*entity.ChargingOrder) bool { return false })

	result, err := f.workflow.Charge(context.Background(), chargeRequest("40.00"))
	require.NoError(t, err)
	assert.False(t, result.Committed)

	assert.Equal(t, entity.TxRolledBack, f.store.records[result.TxID].Status)
	assert.Equal(t, entity.HoldCanceled, f.store.holds[result.TxID].Status)
	assert.Equal(t, entity.OrderFailed, f.store.orders[result.TxID].Status)
	assert.True(t, f.store.accounts["1001"].Balance.Equal(decimal.RequireFromString("100.00")))
}

func TestChargeValidationErrorRollsBack(t *testing.T) {
	f := newWorkflowFixture(t, func(*entity.ChargingOrder) bool { return true })

	result, err := f.workflow.Charge(context.Background(), ChargeRequest{
		UserID:     "",
		ResourceID: "cp-001",
		Amount:     decimal.RequireFromString("40.00"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	assert.Equal(t, entity.TxRolledBack, f.store.records[result.TxID].Status)
}
