package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// OutboxRepository persists intent-to-publish rows
type OutboxRepository interface {
	// Create inserts a new PENDING row
	//
	// Possible errors:
	// - ErrDuplicateKey: if a row already exists for the business id
	Create(ctx context.Context, message *entity.OutboxMessage) error

	// ExistsForBusinessID reports whether a row exists for the business id
	ExistsForBusinessID(ctx context.Context, businessID string) (bool, error)

	// ClaimPending claims up to limit PENDING rows below the retry cap
	// whose next retry time has passed, using a non-blocking lock-and-skip
	// read so concurrent relay instances never select the same rows.
	ClaimPending(ctx context.Context, limit, maxRetry int, now time.Time) ([]*entity.OutboxMessage, error)

	// MarkSent transitions a row from PENDING to SENT. Returns false when
	// the row was no longer PENDING.
	MarkSent(ctx context.Context, messageID string) (bool, error)

	// MarkRetry records a failed publish attempt: bumps the retry count,
	// schedules the next attempt, and moves the row to FAILED once the cap
	// is reached.
	MarkRetry(ctx context.Context, messageID string, retryCount int, failed bool, nextRetry time.Time) error

	// MarkProcessed transitions the row for a business id to PROCESSED
	// once the downstream effect has been applied. Missing rows are not an
	// error; the credit may have originated elsewhere.
	MarkProcessed(ctx context.Context, businessID string) error
}
