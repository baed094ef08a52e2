package tcc

import (
	"context"
	"time"
)

// Participant is one side of a Try-Confirm-Cancel transaction. Every phase
// must be individually idempotent: a repeated invocation after a recorded
// success short-circuits without re-executing the domain effect.
type Participant interface {
	// Name identifies the participant in logs and action log rows
	Name() string

	// Try reserves the participant's resource. A false result with a nil
	// error is a validation failure (nothing was reserved); an error means
	// the reservation outcome is unknown and the unit must abort.
	Try(ctx context.Context, txID string, args any) (bool, error)

	// Confirm finalizes a successful Try. Confirming a transaction that
	// never reserved anything is a logic error, not a success.
	Confirm(ctx context.Context, txID string) (bool, error)

	// Cancel compensates a Try. Absence of a reservation is treated as
	// already-canceled and succeeds without side effects.
	Cancel(ctx context.Context, txID string) (bool, error)
}

// StuckFinder reports transactions whose Try succeeded before the cutoff
// but never reached a terminal Confirm or Cancel. The supervisor unions
// these across participants each sweep.
type StuckFinder interface {
	Name() string
	StuckTransactions(ctx context.Context, cutoff time.Time) ([]string, error)
}
