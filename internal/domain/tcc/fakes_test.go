package tcc

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time                  { return c.now }
func (c *fakeClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

type memRecordRepo struct {
	records map[string]*entity.TransactionRecord
	claimed map[string]bool
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{
		records: map[string]*entity.TransactionRecord{},
		claimed: map[string]bool{},
	}
}

func (r *memRecordRepo) Create(_ context.Context, record *entity.TransactionRecord) error {
	if _, ok := r.records[record.TxID]; ok {
		return errs.ErrDuplicateKey
	}
	copied := *record
	r.records[record.TxID] = &copied
	return nil
}

func (r *memRecordRepo) GetByTxID(_ context.Context, txID string) (*entity.TransactionRecord, error) {
	record, ok := r.records[txID]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *memRecordRepo) UpdateStatus(_ context.Context, txID string, status entity.TxStatus) error {
	record, ok := r.records[txID]
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

func (r *memRecordRepo) WithRepairClaim(ctx context.Context, txID string, fn func(ctx context.Context) error) (bool, error) {
	record, ok := r.records[txID]
	if !ok || record.Status.IsTerminal() || r.claimed[txID] {
		return false, nil
	}
	return true, fn(ctx)
}

// fakeUOW passes the caller's context through. Only the record repository
// is populated; the coordinator never touches the others.
type fakeUOW struct {
	records persistence.TransactionRecordRepository
}

func (u *fakeUOW) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *fakeUOW) Commit(context.Context) error                       { return nil }
func (u *fakeUOW) Rollback(context.Context) error                     { return nil }

func (u *fakeUOW) GetTransactionRecordRepository(context.Context) persistence.TransactionRecordRepository {
	return u.records
}
func (u *fakeUOW) GetActionLogRepository(context.Context) persistence.ActionLogRepository { return nil }
func (u *fakeUOW) GetAccountRepository(context.Context) persistence.AccountRepository     { return nil }
func (u *fakeUOW) GetPaymentHoldRepository(context.Context) persistence.PaymentHoldRepository {
	return nil
}
func (u *fakeUOW) GetChargingOrderRepository(context.Context) persistence.ChargingOrderRepository {
	return nil
}
func (u *fakeUOW) GetOutboxRepository(context.Context) persistence.OutboxRepository { return nil }
func (u *fakeUOW) GetPointsRepository(context.Context) persistence.PointsRepository { return nil }
func (u *fakeUOW) GetFailedMessageRepository(context.Context) persistence.FailedMessageRepository {
	return nil
}

// fakeParticipant answers each phase with a scripted result and counts
// invocations
type fakeParticipant struct {
	name       string
	tryOK      bool
	tryErr     error
	confirmOK  bool
	confirmErr error
	cancelOK   bool
	cancelErr  error

	tryCalls     int
	confirmCalls int
	cancelCalls  int
}

func (p *fakeParticipant) Name() string { return p.name }

func (p *fakeParticipant) Try(context.Context, string, any) (bool, error) {
	p.tryCalls++
	return p.tryOK, p.tryErr
}

func (p *fakeParticipant) Confirm(context.Context, string) (bool, error) {
	p.confirmCalls++
	return p.confirmOK, p.confirmErr
}

func (p *fakeParticipant) Cancel(context.Context, string) (bool, error) {
	p.cancelCalls++
	return p.cancelOK, p.cancelErr
}

type fakeFinder struct {
	name string
	ids  []string
	err  error
}

func (f *fakeFinder) Name() string { return f.name }

func (f *fakeFinder) StuckTransactions(context.Context, time.Time) ([]string, error) {
	return f.ids, f.err
}
