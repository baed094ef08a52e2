package tcc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/logger"
)

type supervisorFixture struct {
	supervisor *Supervisor
	records    *memRecordRepo
	payment    *fakeParticipant
	charging   *fakeParticipant
}

func newSupervisorFixture(finders []StuckFinder, orderState OrderStateFunc) *supervisorFixture {
	records := newMemRecordRepo()
	uow := &fakeUOW{records: records}
	log := logger.NewNoopLogger()
	clock := newFakeClock()

	payment := &fakeParticipant{name: "payment", confirmOK: true, cancelOK: true}
	charging := &fakeParticipant{name: "charging", confirmOK: true, cancelOK: true}
	coordinator := NewCoordinator(uow, log, clock)

	return &supervisorFixture{
		supervisor: NewSupervisor(
			coordinator,
			[]Participant{payment, charging},
			finders,
			orderState,
			records,
			time.Minute,
			log,
			clock,
		),
		records:  records,
		payment:  payment,
		charging: charging,
	}
}

func seedRecord(t *testing.T, records *memRecordRepo, txID string, status entity.TxStatus) {
	t.Helper()
	require.NoError(t, records.Create(context.Background(), &entity.TransactionRecord{
		TxID:   txID,
		Status: status,
	}))
}

func TestSupervisorCommitsInProgressOrder(t *testing.T) {
	finder := &fakeFinder{name: "payment", ids: []string{"tx-1"}}
	f := newSupervisorFixture([]StuckFinder{finder}, func(context.Context, string) (entity.OrderStatus, bool, error) {
		return entity.OrderInProgress, true, nil
	})
	seedRecord(t, f.records, "tx-1", entity.TxTrySuccess)

	require.NoError(t, f.supervisor.RunOnce(context.Background()))

	assert.Equal(t, 1, f.payment.confirmCalls)
	assert.Equal(t, 1, f.charging.confirmCalls)

	record, err := f.records.GetByTxID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TxCommitted, record.Status)
}

func TestSupervisorRollsBackFailedOrder(t *testing.T) {
	finder := &fakeFinder{name: "payment", ids: []string{"tx-1"}}
	f := newSupervisorFixture([]StuckFinder{finder}, func(context.Context, string) (entity.OrderStatus, bool, error) {
		return entity.OrderFailed, true, nil
	})
	seedRecord(t, f.records, "tx-1", entity.TxTrySuccess)

	require.NoError(t, f.supervisor.RunOnce(context.Background()))

	assert.Equal(t, 1, f.payment.cancelCalls)
	assert.Equal(t, 1, f.charging.cancelCalls)

	record, err := f.records.GetByTxID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TxRolledBack, record.Status)
}

func TestSupervisorRollsBackWhenNoOrderExists(t *testing.T) {
	finder := &fakeFinder{name: "payment", ids: []string{"tx-1"}}
	f := newSupervisorFixture([]StuckFinder{finder}, func(context.Context, string) (entity.OrderStatus, bool, error) {
		return "", false, nil
	})
	seedRecord(t, f.records, "tx-1", entity.TxTrySuccess)

	require.NoError(t, f.supervisor.RunOnce(context.Background()))

	record, err := f.records.GetByTxID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TxRolledBack, record.Status)
}

func TestSupervisorSkipsCompletedTransaction(t *testing.T) {
	finder := &fakeFinder{name: "payment", ids: []string{"tx-1"}}
	f := newSupervisorFixture([]StuckFinder{finder}, func(context.Context, string) (entity.OrderStatus, bool, error) {
		return entity.OrderInProgress, true, nil
	})
	seedRecord(t, f.records, "tx-1", entity.TxCommitted)

	require.NoError(t, f.supervisor.RunOnce(context.Background()))

	assert.Zero(t, f.payment.confirmCalls)
	assert.Zero(t, f.payment.cancelCalls)
}

func TestSupervisorSkipsClaimedTransaction(t *testing.T) {
	finder := &fakeFinder{name: "payment", ids: []string{"tx-1"}}
	f := newSupervisorFixture([]StuckFinder{finder}, func(context.Context, string) (entity.OrderStatus, bool, error) {
		return entity.OrderInProgress, true, nil
	})
	seedRecord(t, f.records, "tx-1", entity.TxTrySuccess)
	f.records.claimed["tx-1"] = true

	require.NoError(t, f.supervisor.RunOnce(context.Background()))

	assert.Zero(t, f.payment.confirmCalls)

	record, err := f.records.GetByTxID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TxTrySuccess, record.Status)
}

func TestSupervisorFinderErrorDoesNotAbortSweep(t *testing.T) {
	broken := &fakeFinder{name: "payment", err: errors.New("store down")}
	healthy := &fakeFinder{name: "charging", ids: []string{"tx-1"}}
	f := newSupervisorFixture([]StuckFinder{broken, healthy}, func(context.Context, string) (entity.OrderStatus, bool, error) {
		return entity.OrderInProgress, true, nil
	})
	seedRecord(t, f.records, "tx-1", entity.TxTrySuccess)

	require.NoError(t, f.supervisor.RunOnce(context.Background()))

	record, err := f.records.GetByTxID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TxCommitted, record.Status)
}

func TestSupervisorUnionsFindersWithoutDuplicateRepair(t *testing.T) {
	first := &fakeFinder{name: "payment", ids: []string{"tx-1"}}
	second := &fakeFinder{name: "charging", ids: []string{"tx-1"}}
	f := newSupervisorFixture([]StuckFinder{first, second}, func(context.Context, string) (entity.OrderStatus, bool, error) {
		return entity.OrderInProgress, true, nil
	})
	seedRecord(t, f.records, "tx-1", entity.TxTrySuccess)

	require.NoError(t, f.supervisor.RunOnce(context.Background()))

	assert.Equal(t, 1, f.payment.confirmCalls)
}
