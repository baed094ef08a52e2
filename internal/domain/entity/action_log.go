package entity

import (
	"time"
)

// Phase identifies a TCC phase
type Phase string

// TCC phases
const (
	PhaseTry     Phase = "TRY"
	PhaseConfirm Phase = "CONFIRM"
	PhaseCancel  Phase = "CANCEL"
)

// Outcome is the recorded result of a phase execution
type Outcome string

// Phase outcomes
const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

// ActionLogEntry is a participant's private record of a phase execution.
// A SUCCESS entry for (tx_id, participant, phase) is the sole idempotency
// gate: re-invocation of that phase must short-circuit.
type ActionLogEntry struct {
	TxID        string
	Participant string
	Phase       Phase
	Outcome     Outcome
	Note        string
	CreatedAt   time.Time
}
