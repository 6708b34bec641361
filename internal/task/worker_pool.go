package task

import (
	"context"
	"log/slog"
	"sync"
)

// HandlerFunc processes one task taken from the queue.
type HandlerFunc func(ctx context.Context, task Task, workerID int)

// WorkerPoolConfig sizes a WorkerPool. A WorkerCount below one is raised to one.
type WorkerPoolConfig struct {
	WorkerCount int
}

func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{WorkerCount: 2}
}

// WorkerPool runs a fixed number of goroutines that pull from a TaskSource.
type WorkerPool struct {
	source  TaskSource
	workers int
	logger  *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewWorkerPool(source TaskSource, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	workers := config.WorkerCount
	if workers < 1 {
		logger.Warn("worker count must be positive, using 1", "configured", config.WorkerCount)
		workers = 1
	}
	return &WorkerPool{source: source, workers: workers, logger: logger}
}

// Start launches the workers. Cancelling ctx or calling Stop ends them; a
// closed source ends them once it is drained.
func (p *WorkerPool) Start(ctx context.Context, handle HandlerFunc) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(p.workers)
	for id := range p.workers {
		go p.run(ctx, id, handle)
	}
	p.logger.Info("worker pool started", "workers", p.workers)
}

// Stop blocks until every in-flight handler has returned.
func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *WorkerPool) run(ctx context.Context, id int, handle HandlerFunc) {
	defer p.wg.Done()

	log := p.logger.With("worker_id", id)
	tasks := p.source.Tasks()
	for {
		select {
		case <-ctx.Done():
			log.Debug("worker exiting", "reason", ctx.Err())
			return
		case t, ok := <-tasks:
			if !ok {
				log.Debug("worker exiting", "reason", "queue closed")
				return
			}
			handle(ctx, t, id)
		}
	}
}
