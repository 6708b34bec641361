package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is the bounded in-memory hand-off between the runner and its
// workers. Submission never blocks: a design request must not wait on image
// generation, so a full buffer is reported to the caller instead.
type TaskQueue struct {
	mu      sync.RWMutex
	pending chan Task
	closed  bool
	logger  *slog.Logger
}

func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		pending: make(chan Task, capacity),
		logger:  logger,
	}
}

// Enqueue returns ErrQueueFull when all capacity slots are taken and
// ErrQueueClosed once Close has been called.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.pending <- task:
	default:
		return fmt.Errorf("%w: %d of %d slots in use", ErrQueueFull, len(q.pending), cap(q.pending))
	}

	q.logger.Debug("queued task",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"depth", len(q.pending))
	return nil
}

// Close is idempotent. Workers drain whatever is still buffered.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.pending)
	q.logger.Info("task queue closed", "undelivered", len(q.pending))
}

func (q *TaskQueue) Len() int {
	return len(q.pending)
}

// Tasks is the receive side consumed by the worker pool.
func (q *TaskQueue) Tasks() <-chan Task {
	return q.pending
}
