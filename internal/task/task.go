package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus mirrors the status column of the tasks table.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeDesignGeneration renders a design's image and finalizes the design.
const TaskTypeDesignGeneration = "design_generation"

var (
	ErrUnknownTaskType = errors.New("unknown task type")
	ErrJobPanicked     = errors.New("task panicked")
)

// Task is one unit of background work. Payload is what gets persisted; a
// Rehydrator must be able to rebuild an equivalent Task from it after a
// restart.
type Task interface {
	ID() uuid.UUID
	Type() string
	Payload() []byte
	Status() TaskStatus
	Execute(ctx context.Context) error
}

// Record is a task row as read back from the store.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rehydrator rebuilds an executable Task of one type from its Record.
type Rehydrator interface {
	Rehydrate(record Record) (Task, error)
}

// TaskSource is the consuming side of a queue.
type TaskSource interface {
	Tasks() <-chan Task
}

// TaskStore persists task state so pending work survives a restart.
type TaskStore interface {
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus records a transition; errorMsg is kept only for failures.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks returns pending records, oldest first.
	GetPendingTasks(ctx context.Context) ([]Record, error)

	// GetProcessingTasks returns processing records last touched more than
	// olderThan ago, or all of them when olderThan is zero.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Record, error)

	// WithTx binds the store to tx so a task commits with the design it renders.
	WithTx(tx *sql.Tx) TaskStore
}
