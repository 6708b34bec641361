package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskRunnerConfig sizes the runner. StuckTaskAge is how long a task may
// stay in processing before a sweep resets it to pending; the sweep runs
// every StuckTaskCheckInterval (five minutes when zero).
type TaskRunnerConfig struct {
	WorkerCount            int
	QueueSize              int
	StuckTaskAge           time.Duration
	StuckTaskCheckInterval time.Duration
}

func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner owns the bounded queue and worker pool that execute background
// tasks. Task records in the store are the only channel between the
// submitter and the worker.
type TaskRunner struct {
	store       TaskStore
	queue       *TaskQueue
	pool        *WorkerPool
	rehydrators map[string]Rehydrator
	config      TaskRunnerConfig
	logger      *slog.Logger
	errHandler  func(task Task, err error)

	// tracked holds IDs that are queued or executing, so sweeps never
	// enqueue the same task twice.
	tracked sync.Map

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)

	return &TaskRunner{
		store:       store,
		queue:       queue,
		pool:        NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		rehydrators: make(map[string]Rehydrator),
		config:      config,
		logger:      logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler replaces the default handler, which only logs.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// RegisterRehydrator makes persisted records of taskType executable after a
// restart or a sweep. Register before Start.
func (r *TaskRunner) RegisterRehydrator(taskType string, rehydrator Rehydrator) {
	r.rehydrators[taskType] = rehydrator
}

// Submit saves the task and enqueues it. A full queue is not an error: the
// record stays pending and the next sweep picks it up.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	r.Enqueue(task)
	return nil
}

// Enqueue hands an already persisted task to the workers without blocking.
// It reports whether the task was queued.
func (r *TaskRunner) Enqueue(task Task) bool {
	if _, loaded := r.tracked.LoadOrStore(task.ID(), struct{}{}); loaded {
		return false
	}

	if err := r.queue.Enqueue(task); err != nil {
		r.tracked.Delete(task.ID())
		r.logger.Warn("task left pending for next sweep",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"reason", err)
		return false
	}
	return true
}

// Start recovers unfinished tasks and starts the workers and the sweeper.
// Tasks run with contexts derived from ctx.
func (r *TaskRunner) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	if err := r.Recover(ctx); err != nil {
		r.cancel()
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start(ctx, r.processTask)

	r.wg.Add(1)
	go r.sweeper(ctx)

	return nil
}

// Stop cancels running tasks, waits for the workers and closes the queue.
func (r *TaskRunner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.pool.Stop()
	r.wg.Wait()
	r.queue.Close()
}

// Recover resets tasks interrupted mid-processing and enqueues every
// pending task.
func (r *TaskRunner) Recover(ctx context.Context) error {
	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	for _, rec := range processing {
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", rec.ID,
				"task_type", rec.Type,
				"error", err)
		}
	}

	queued, err := r.requeuePending(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("recovered unfinished tasks",
		"processing_reset", len(processing),
		"requeued", queued)
	return nil
}

// requeuePending enqueues pending records that are not already tracked.
func (r *TaskRunner) requeuePending(ctx context.Context) (int, error) {
	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending tasks: %w", err)
	}

	queued := 0
	for _, rec := range pending {
		if _, busy := r.tracked.Load(rec.ID); busy {
			continue
		}

		task, err := r.rehydrate(rec)
		if err != nil {
			r.logger.Error("cannot rebuild task from record",
				"task_id", rec.ID,
				"task_type", rec.Type,
				"error", err)
			if updateErr := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusFailed, err.Error()); updateErr != nil {
				r.logger.Error("failed to mark task failed", "task_id", rec.ID, "error", updateErr)
			}
			continue
		}

		if !r.Enqueue(task) {
			// Queue full; remaining records wait for the next sweep
			break
		}
		queued++
	}
	return queued, nil
}

func (r *TaskRunner) rehydrate(rec Record) (Task, error) {
	rehydrator, ok := r.rehydrators[rec.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, rec.Type)
	}
	return rehydrator.Rehydrate(rec)
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	defer r.tracked.Delete(task.ID())

	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")
	err := r.execute(ctx, task)

	// Status writes must land even when shutdown cancelled the task context
	statusCtx := context.WithoutCancel(ctx)
	if err != nil && ctx.Err() != nil {
		logger.Warn("task interrupted by shutdown, returning to pending", "error", err)
		if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusPending, "Interrupted by shutdown"); updateErr != nil {
			logger.Error("failed to reset interrupted task", "error", updateErr)
		}
		return
	}

	if err != nil {
		if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed successfully")
	if updateErr := r.store.UpdateTaskStatus(statusCtx, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
		logger.Error("failed to update task status to completed", "error", updateErr)
	}
}

// execute runs the task and converts a panic into an error.
func (r *TaskRunner) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("recovered panic in task",
				"task_id", task.ID(),
				"panic", p,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrJobPanicked, p)
		}
	}()
	return task.Execute(ctx)
}

// sweeper periodically resets tasks stuck in processing and enqueues
// pending tasks that did not fit in the queue when submitted.
func (r *TaskRunner) sweeper(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one stuck-task and pending-task pass.
func (r *TaskRunner) Sweep(ctx context.Context) {
	stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
	}

	for _, rec := range stuck {
		if _, busy := r.tracked.Load(rec.ID); busy {
			continue
		}
		if err := r.store.UpdateTaskStatus(ctx, rec.ID, TaskStatusPending,
			"Reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck task status",
				"task_id", rec.ID,
				"task_type", rec.Type,
				"error", err)
			continue
		}
		r.logger.Info("reset stuck task", "task_id", rec.ID, "task_type", rec.Type)
	}

	queued, err := r.requeuePending(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error("failed to requeue pending tasks", "error", err)
		return
	}
	if queued > 0 {
		r.logger.Info("requeued pending tasks", "count", queued)
	}
}

// IsTracked reports whether the task is currently queued or executing.
func (r *TaskRunner) IsTracked(id uuid.UUID) bool {
	_, ok := r.tracked.Load(id)
	return ok
}
