package outbox

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

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time                  { return c.now }
func (c *fakeClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

type memOutbox struct {
	rows map[string]*entity.OutboxMessage // keyed by message id
}

func newMemOutbox() *memOutbox {
	return &memOutbox{rows: map[string]*entity.OutboxMessage{}}
}

func (r *memOutbox) Create(_ context.Context, message *entity.OutboxMessage) error {
	copied := *message
	r.rows[message.MessageID] = &copied
	return nil
}

func (r *memOutbox) ExistsForBusinessID(context.Context, string) (bool, error) { return false, nil }

func (r *memOutbox) ClaimPending(_ context.Context, limit, maxRetry int, now time.Time) ([]*entity.OutboxMessage, error) {
	var claimed []*entity.OutboxMessage
	for _, row := range r.rows {
		if len(claimed) >= limit {
			break
		}
		if row.Status == entity.OutboxPending && row.RetryCount < maxRetry && !row.NextRetryTime.After(now) {
			copied := *row
			claimed = append(claimed, &copied)
			// Claimed rows lease out of visibility until the worker
			// resolves them, as the store-backed claim does
			row.NextRetryTime = now.Add(time.Minute)
		}
	}
	return claimed, nil
}

func (r *memOutbox) MarkSent(_ context.Context, messageID string) (bool, error) {
	row, ok := r.rows[messageID]
	if !ok || row.Status != entity.OutboxPending {
		return false, nil
	}
	row.Status = entity.OutboxSent
	return true, nil
}

func (r *memOutbox) MarkRetry(_ context.Context, messageID string, retryCount int, failed bool, nextRetry time.Time) error {
	row, ok := r.rows[messageID]
	if !ok {
		return nil
	}
	row.RetryCount = retryCount
	row.NextRetryTime = nextRetry
	if failed {
		row.Status = entity.OutboxFailed
	}
	return nil
}

func (r *memOutbox) MarkProcessed(context.Context, string) error { return nil }

type fakePublisher struct {
	published [][]byte
	keys      []string
	err       error
	failures  int    // fail this many calls before succeeding
	onPublish func() // runs at the start of every Publish
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	if p.onPublish != nil {
		p.onPublish()
	}
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unreachable")
	}
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.published = append(p.published, body)
	return nil
}

func newTestRelay(publisher *fakePublisher) (*Relay, *memOutbox, *fakeClock) {
	repo := newMemOutbox()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	relay := NewRelay(repo, publisher, Config{
		RoutingKey:      "points.credit",
		BatchSize:       10,
		MaxRetry:        3,
		PublishAttempts: 1,
	}, logger.NewNoopLogger(), clock)
	return relay, repo, clock
}

func seedRow(repo *memOutbox, messageID string, due time.Time) {
	repo.rows[messageID] = &entity.OutboxMessage{
		MessageID:     messageID,
		BusinessID:    "order-" + messageID,
		Payload:       []byte(`{"orderId":"order-` + messageID + `"}`),
		Status:        entity.OutboxPending,
		NextRetryTime: due,
	}
}

func TestRelayPublishesAndMarksSent(t *testing.T) {
	publisher := &fakePublisher{}
	relay, repo, clock := newTestRelay(publisher)
	seedRow(repo, "m-1", clock.now)
	seedRow(repo, "m-2", clock.now)

	require.NoError(t, relay.RunOnce(context.Background()))

	assert.Len(t, publisher.published, 2)
	assert.Equal(t, entity.OutboxSent, repo.rows["m-1"].Status)
	assert.Equal(t, entity.OutboxSent, repo.rows["m-2"].Status)
	for _, key := range publisher.keys {
		assert.Equal(t, "points.credit", key)
	}
}

func TestRelaySkipsRowsNotYetDue(t *testing.T) {
	publisher := &fakePublisher{}
	relay, repo, clock := newTestRelay(publisher)
	seedRow(repo, "m-1", clock.now.Add(time.Hour))

	require.NoError(t, relay.RunOnce(context.Background()))

	assert.Empty(t, publisher.published)
	assert.Equal(t, entity.OutboxPending, repo.rows["m-1"].Status)
}

func TestRelaySchedulesRetryOnPublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker unreachable")}
	relay, repo, clock := newTestRelay(publisher)
	seedRow(repo, "m-1", clock.now)

	require.NoError(t, relay.RunOnce(context.Background()))

	row := repo.rows["m-1"]
	assert.Equal(t, entity.OutboxPending, row.Status)
	assert.Equal(t, 1, row.RetryCount)
	// Exponential: first retry lands 2^1 seconds out
	assert.Equal(t, clock.now.Add(2*time.Second), row.NextRetryTime)
}

func TestRelayParksRowAfterRetryCap(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker unreachable")}
	relay, repo, clock := newTestRelay(publisher)
	seedRow(repo, "m-1", clock.now)
	repo.rows["m-1"].RetryCount = 2 // next failure reaches the cap of 3

	require.NoError(t, relay.RunOnce(context.Background()))

	assert.Equal(t, entity.OutboxFailed, repo.rows["m-1"].Status)
	assert.Equal(t, 3, repo.rows["m-1"].RetryCount)
}

func TestRelayClaimHidesRowsFromConcurrentRelays(t *testing.T) {
	publisher := &fakePublisher{}
	relay, repo, clock := newTestRelay(publisher)
	seedRow(repo, "m-1", clock.now)

	// A second relay instance sweeping while the row is claimed but not yet
	// sent must find nothing due
	publisher.onPublish = func() {
		rows, err := repo.ClaimPending(context.Background(), 10, 3, clock.now)
		require.NoError(t, err)
		assert.Empty(t, rows)
	}

	require.NoError(t, relay.RunOnce(context.Background()))
	assert.Len(t, publisher.published, 1)
	assert.Equal(t, entity.OutboxSent, repo.rows["m-1"].Status)
}

func TestRelayRetriesTransientFailureWithinCycle(t *testing.T) {
	// One failed attempt, then success: the in-cycle backoff absorbs it
	// without touching the row's retry count
	publisher := &fakePublisher{failures: 1}
	relay, repo, clock := newTestRelay(publisher)
	seedRow(repo, "m-1", clock.now)

	require.NoError(t, relay.RunOnce(context.Background()))

	assert.Len(t, publisher.published, 1)
	assert.Equal(t, entity.OutboxSent, repo.rows["m-1"].Status)
	assert.Zero(t, repo.rows["m-1"].RetryCount)
}
