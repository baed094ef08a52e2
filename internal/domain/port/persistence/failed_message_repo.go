package persistence

import (
	"context"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// FailedMessageRepository persists the append-only dead-letter sink
type FailedMessageRepository interface {
	// Create appends one quarantined message record
	Create(ctx context.Context, record *entity.FailedMessage) error
}
