package core

import (
	"time"
)

// TimeProvider abstracts the clock so timeout and backoff logic is testable
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}
