package persistence

import (
	"context"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
)

// TransactionRecordRepository persists coordinator-owned transaction records
type TransactionRecordRepository interface {
	// Create inserts a new record in INIT status
	//
	// Possible errors:
	// - ErrDuplicateKey: if a record with the same tx id exists
	// - ErrDatabaseConnection: if the store is unreachable
	Create(ctx context.Context, record *entity.TransactionRecord) error

	// GetByTxID retrieves a record by tx id
	//
	// Possible errors:
	// - ErrTransactionNotFound: if no record exists for the tx id
	GetByTxID(ctx context.Context, txID string) (*entity.TransactionRecord, error)

	// UpdateStatus sets the record status and the matching phase timestamp
	UpdateStatus(ctx context.Context, txID string, status entity.TxStatus) error

	// WithRepairClaim takes a non-blocking claim on a non-terminal record
	// row and runs fn while the claim is held. Returns false without
	// running fn when the row is already claimed by another worker or has
	// reached a terminal status.
	WithRepairClaim(ctx context.Context, txID string, fn func(ctx context.Context) error) (bool, error)
}
