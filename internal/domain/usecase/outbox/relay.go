package outbox

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/messaging"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/persistence"
)

// Config tunes the relay loop
type Config struct {
	RoutingKey      string
	BatchSize       int
	MaxRetry        int
	PublishAttempts uint64
}

// Relay drains PENDING outbox rows to the broker. Rows are claimed with a
// non-blocking lock-and-skip read so concurrent relay instances never pick
// the same batch, and every row's state transition commits on its own: a
// crash mid-batch loses progress only on the unfinished row.
type Relay struct {
	repo         persistence.OutboxRepository
	publisher    messaging.Publisher
	cfg          Config
	logger       coreport.Logger
	timeProvider coreport.TimeProvider
}

// NewRelay creates a new Relay
func NewRelay(
	repo persistence.OutboxRepository,
	publisher messaging.Publisher,
	cfg Config,
	logger coreport.Logger,
	timeProvider coreport.TimeProvider,
) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetry <= 0 {
		cfg.MaxRetry = 5
	}
	if cfg.PublishAttempts == 0 {
		cfg.PublishAttempts = 2
	}
	return &Relay{
		repo:         repo,
		publisher:    publisher,
		cfg:          cfg,
		logger:       logger,
		timeProvider: timeProvider,
	}
}

// RunOnce performs a single relay cycle
func (r *Relay) RunOnce(ctx context.Context) error {
	now := r.timeProvider.Now()
	rows, err := r.repo.ClaimPending(ctx, r.cfg.BatchSize, r.cfg.MaxRetry, now)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	sent := 0
	for _, row := range rows {
		if err := r.relayOne(ctx, row); err != nil {
			r.logger.Error("Failed to advance outbox row", map[string]any{
				"message_id": row.MessageID,
				"error":      err.Error(),
			})
			continue
		}
		sent++
	}

	r.logger.Info("Relay cycle finished", map[string]any{
		"claimed": len(rows),
		"sent":    sent,
	})
	return nil
}

// relayOne publishes a single row and commits its transition independently
func (r *Relay) relayOne(ctx context.Context, row *entity.OutboxMessage) error {
	if err := r.publish(ctx, row); err != nil {
		return r.recordFailure(ctx, row, err)
	}

	marked, err := r.repo.MarkSent(ctx, row.MessageID)
	if err != nil {
		return err
	}
	if !marked {
		// Another relay advanced the row first; the consumer dedupes the
		// extra delivery.
		r.logger.Warn("Outbox row already advanced", map[string]any{"message_id": row.MessageID})
	}
	return nil
}

// publish retries transient broker failures with bounded exponential
// backoff before the attempt counts against the row's retry cap
func (r *Relay) publish(ctx context.Context, row *entity.OutboxMessage) error {
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.cfg.PublishAttempts),
		ctx,
	)
	return backoff.Retry(func() error {
		return r.publisher.Publish(ctx, r.cfg.RoutingKey, row.Payload)
	}, bo)
}

// recordFailure bumps the retry count and either schedules the next
// attempt or parks the row in FAILED once the cap is reached
func (r *Relay) recordFailure(ctx context.Context, row *entity.OutboxMessage, cause error) error {
	retryCount := row.RetryCount + 1
	failed := retryCount >= r.cfg.MaxRetry
	nextRetry := r.timeProvider.Now().Add(time.Duration(1<<uint(retryCount)) * time.Second)

	r.logger.Warn("Publish failed", map[string]any{
		"message_id":  row.MessageID,
		"retry_count": retryCount,
		"terminal":    failed,
		"error":       cause.Error(),
	})
	return r.repo.MarkRetry(ctx, row.MessageID, retryCount, failed, nextRetry)
}
