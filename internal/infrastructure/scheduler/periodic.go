package scheduler

import (
	"context"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
)

// Task is one cycle of a background job
type Task func(ctx context.Context) error

// PeriodicTask drives a Task on a fixed interval. Shutdown is cooperative:
// the loop checks for cancellation between cycles, and an in-flight cycle
// always runs to completion before the loop exits.
type PeriodicTask struct {
	name     string
	interval time.Duration
	task     Task
	logger   coreport.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewPeriodicTask creates a new PeriodicTask
func NewPeriodicTask(name string, interval time.Duration, task Task, logger coreport.Logger) *PeriodicTask {
	return &PeriodicTask{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the loop. The task runs once immediately and then on
// every interval tick until the context is canceled or Stop is called.
func (p *PeriodicTask) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		go p.run(ctx)
	})
}

// Stop signals the loop to exit and waits for the in-flight cycle to finish
func (p *PeriodicTask) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	<-p.done
}

func (p *PeriodicTask) run(ctx context.Context) {
	defer close(p.done)

	p.logger.Info("Background task started", map[string]any{
		"task":     p.name,
		"interval": p.interval.String(),
	})

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Background task stopped", map[string]any{"task": p.name})
			return
		case <-p.stop:
			p.logger.Info("Background task stopped", map[string]any{"task": p.name})
			return
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

func (p *PeriodicTask) runCycle(ctx context.Context) {
	if err := p.task(ctx); err != nil {
		p.logger.Error("Background task cycle failed", map[string]any{
			"task":  p.name,
			"error": err.Error(),
		})
	}
}
