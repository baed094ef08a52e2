package entity

import (
	"time"
)

// TxStatus represents the lifecycle state of a distributed transaction
type TxStatus string

// Transaction statuses. Committed and RolledBack are terminal; a record
// never skips Init.
const (
	TxInit       TxStatus = "INIT"
	TxTrySuccess TxStatus = "TRY_SUCCESS"
	TxTryFailed  TxStatus = "TRY_FAILED"
	TxCommitted  TxStatus = "COMMITTED"
	TxRolledBack TxStatus = "ROLLED_BACK"
)

// IsTerminal reports whether the status allows no further transitions
func (s TxStatus) IsTerminal() bool {
	return s == TxCommitted || s == TxRolledBack
}

// TransactionRecord is the coordinator-owned record of a TCC transaction
type TransactionRecord struct {
	TxID       string
	Status     TxStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CommitTime *time.Time
	CancelTime *time.Time
}
