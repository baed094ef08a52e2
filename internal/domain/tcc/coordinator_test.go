package tcc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/logger"
)

func newTestCoordinator() (*Coordinator, *memRecordRepo) {
	records := newMemRecordRepo()
	uow := &fakeUOW{records: records}
	return NewCoordinator(uow, logger.NewNoopLogger(), newFakeClock()), records
}

func beginTx(t *testing.T, c *Coordinator) string {
	t.Helper()
	txID, err := c.Begin(context.Background())
	require.NoError(t, err)
	return txID
}

func TestCoordinatorBeginCreatesInitRecord(t *testing.T) {
	coordinator, records := newTestCoordinator()

	txID := beginTx(t, coordinator)

	record, err := records.GetByTxID(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxInit, record.Status)
}

func TestCoordinatorTry(t *testing.T) {
	tests := []struct {
		name        string
		participant *fakeParticipant
		wantOK      bool
		wantErr     bool
		wantStatus  entity.TxStatus
	}{
		{
			name:        "successful try records TRY_SUCCESS",
			participant: &fakeParticipant{name: "payment", tryOK: true},
			wantOK:      true,
			wantStatus:  entity.TxTrySuccess,
		},
		{
			name:        "validation failure records TRY_FAILED",
			participant: &fakeParticipant{name: "payment", tryOK: false},
			wantOK:      false,
			wantStatus:  entity.TxTryFailed,
		},
		{
			name:        "try error leaves the record untouched",
			participant: &fakeParticipant{name: "payment", tryErr: errors.New("store down")},
			wantErr:     true,
			wantStatus:  entity.TxInit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coordinator, records := newTestCoordinator()
			txID := beginTx(t, coordinator)

			ok, err := coordinator.Try(context.Background(), txID, tt.participant, nil)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOK, ok)
			}
			record, getErr := records.GetByTxID(context.Background(), txID)
			require.NoError(t, getErr)
			assert.Equal(t, tt.wantStatus, record.Status)
		})
	}
}

func TestCoordinatorCommitConfirmsAllParticipants(t *testing.T) {
	coordinator, records := newTestCoordinator()
	txID := beginTx(t, coordinator)
	require.NoError(t, records.UpdateStatus(context.Background(), txID, entity.TxTrySuccess))

	first := &fakeParticipant{name: "payment", confirmOK: true}
	second := &fakeParticipant{name: "charging", confirmOK: true}

	committed, err := coordinator.Commit(context.Background(), txID, first, second)
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 1, first.confirmCalls)
	assert.Equal(t, 1, second.confirmCalls)

	record, err := records.GetByTxID(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxCommitted, record.Status)
}

func TestCoordinatorCommitRefusedOutsideTrySuccess(t *testing.T) {
	coordinator, _ := newTestCoordinator()
	txID := beginTx(t, coordinator)

	participant := &fakeParticipant{name: "payment", confirmOK: true}

	committed, err := coordinator.Commit(context.Background(), txID, participant)
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Zero(t, participant.confirmCalls)
}

func TestCoordinatorCommitStopsAtFirstConfirmFailure(t *testing.T) {
	coordinator, records := newTestCoordinator()
	txID := beginTx(t, coordinator)
	require.NoError(t, records.UpdateStatus(context.Background(), txID, entity.TxTrySuccess))

	first := &fakeParticipant{name: "payment", confirmErr: errors.New("store down")}
	second := &fakeParticipant{name: "charging", confirmOK: true}

	committed, err := coordinator.Commit(context.Background(), txID, first, second)
	assert.Error(t, err)
	assert.False(t, committed)
	assert.Zero(t, second.confirmCalls)

	// Non-terminal: the supervisor picks it up later
	record, getErr := records.GetByTxID(context.Background(), txID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.TxTrySuccess, record.Status)
}

func TestCoordinatorCommitIsIdempotentThroughParticipants(t *testing.T) {
	coordinator, records := newTestCoordinator()
	txID := beginTx(t, coordinator)
	require.NoError(t, records.UpdateStatus(context.Background(), txID, entity.TxTrySuccess))

	participant := &fakeParticipant{name: "payment", confirmOK: true}

	committed, err := coordinator.Commit(context.Background(), txID, participant)
	require.NoError(t, err)
	require.True(t, committed)

	// Re-issue after commit: terminal status refuses without confirming again
	committed, err = coordinator.Commit(context.Background(), txID, participant)
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, 1, participant.confirmCalls)
}

func TestCoordinatorRollbackCancelsEveryParticipant(t *testing.T) {
	coordinator, records := newTestCoordinator()
	txID := beginTx(t, coordinator)

	failing := &fakeParticipant{name: "payment", cancelErr: errors.New("store down")}
	healthy := &fakeParticipant{name: "charging", cancelOK: true}

	// One cancel failing must not stop the others, and the record still
	// reaches ROLLED_BACK
	err := coordinator.Rollback(context.Background(), txID, failing, healthy)
	require.NoError(t, err)
	assert.Equal(t, 1, failing.cancelCalls)
	assert.Equal(t, 1, healthy.cancelCalls)

	record, getErr := records.GetByTxID(context.Background(), txID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.TxRolledBack, record.Status)
}

func TestCoordinatorRollbackNeverRewritesCommittedRecord(t *testing.T) {
	coordinator, records := newTestCoordinator()
	txID := beginTx(t, coordinator)
	require.NoError(t, records.UpdateStatus(context.Background(), txID, entity.TxTrySuccess))

	participant := &fakeParticipant{name: "payment", confirmOK: true, cancelOK: true}

	committed, err := coordinator.Commit(context.Background(), txID, participant)
	require.NoError(t, err)
	require.True(t, committed)

	// A straggling rollback after commit must leave the terminal record alone
	require.NoError(t, coordinator.Rollback(context.Background(), txID, participant))

	record, err := records.GetByTxID(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, entity.TxCommitted, record.Status)
}

func TestCoordinatorIsCompleted(t *testing.T) {
	coordinator, records := newTestCoordinator()
	txID := beginTx(t, coordinator)

	completed, err := coordinator.IsCompleted(context.Background(), txID)
	require.NoError(t, err)
	assert.False(t, completed)

	require.NoError(t, records.UpdateStatus(context.Background(), txID, entity.TxRolledBack))

	completed, err = coordinator.IsCompleted(context.Background(), txID)
	require.NoError(t, err)
	assert.True(t, completed)
}
