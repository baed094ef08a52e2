package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/logger"
)

func TestPeriodicTaskRunsImmediatelyAndOnTicks(t *testing.T) {
	var runs int64
	task := NewPeriodicTask("counter", 10*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	}, logger.NewNoopLogger())

	task.Start(context.Background())
	defer task.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestPeriodicTaskStopWaitsForLoop(t *testing.T) {
	var runs int64
	task := NewPeriodicTask("counter", 10*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	}, logger.NewNoopLogger())

	task.Start(context.Background())
	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 1
	}, time.Second, time.Millisecond)

	task.Stop()
	after := atomic.LoadInt64(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt64(&runs))
}

func TestPeriodicTaskSurvivesCycleErrors(t *testing.T) {
	var runs int64
	task := NewPeriodicTask("failing", 10*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return errors.New("cycle failed")
	}, logger.NewNoopLogger())

	task.Start(context.Background())
	defer task.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&runs) >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestPeriodicTaskStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs int64
	task := NewPeriodicTask("counter", 10*time.Millisecond, func(context.Context) error {
		atomic.AddInt64(&runs, 1)
		return nil
	}, logger.NewNoopLogger())

	task.Start(ctx)
	cancel()

	time.Sleep(50 * time.Millisecond)
	after := atomic.LoadInt64(&runs)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt64(&runs))
}

func TestPeriodicTaskStopIsIdempotent(t *testing.T) {
	task := NewPeriodicTask("noop", time.Hour, func(context.Context) error { return nil }, logger.NewNoopLogger())
	task.Start(context.Background())
	task.Stop()
	task.Stop()
}
