package logger

import (
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
)

// NoopLogger discards every message. Tests inject it so coordinator,
// participant, and relay assertions run without log noise.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger
func NewNoopLogger() core.Logger {
	return &NoopLogger{}
}

// SetLevel is a no-op; there is no output to filter
func (l *NoopLogger) SetLevel(core.LogLevel) {}

// Debug discards the message
func (l *NoopLogger) Debug(string, map[string]any) {}

// Info discards the message
func (l *NoopLogger) Info(string, map[string]any) {}

// Warn discards the message
func (l *NoopLogger) Warn(string, map[string]any) {}

// Error discards the message
func (l *NoopLogger) Error(string, map[string]any) {}

// Flush has nothing buffered to write
func (l *NoopLogger) Flush() error {
	return nil
}
