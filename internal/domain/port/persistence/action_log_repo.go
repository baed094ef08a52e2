package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// ActionLogRepository persists each participant's private phase log
type ActionLogRepository interface {
	// Append records one phase execution
	Append(ctx context.Context, entry *entity.ActionLogEntry) error

	// HasSucceeded reports whether a SUCCESS entry exists for the given
	// (tx id, participant, phase). This is the idempotency gate for phase
	// re-invocation.
	HasSucceeded(ctx context.Context, txID, participant string, phase entity.Phase) (bool, error)

	// FindUnfinished returns tx ids whose TRY succeeded before the cutoff
	// with no terminal CONFIRM or CANCEL success entry for the participant
	FindUnfinished(ctx context.Context, participant string, cutoff time.Time) ([]string, error)
}
