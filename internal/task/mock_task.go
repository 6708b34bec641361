package task

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/google/uuid"
)

// MockTaskType is the type reported by tasks from CreateMockTaskWithPayload.
const MockTaskType = "mock_task"

// MockTask is a Task whose behaviour is supplied by ExecuteFn. It counts
// how often it ran.
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error

	executions atomic.Int32
}

var _ Task = (*MockTask)(nil)

// NewMockTask creates a pending MockTask whose Execute succeeds.
func NewMockTask(id uuid.UUID, taskType string, payload []byte) *MockTask {
	return &MockTask{
		TaskID:      id,
		TaskType:    taskType,
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
		ExecuteFn:   func(context.Context) error { return nil },
	}
}

// CreateMockTaskWithPayload creates a MockTask carrying a generation-shaped
// payload for a fresh design ID.
func CreateMockTaskWithPayload(prompt string) *MockTask {
	data, _ := json.Marshal(generationPayload{DesignID: uuid.New(), Prompt: prompt})
	return NewMockTask(uuid.New(), MockTaskType, data)
}

func (t *MockTask) ID() uuid.UUID      { return t.TaskID }
func (t *MockTask) Type() string       { return t.TaskType }
func (t *MockTask) Payload() []byte    { return t.TaskPayload }
func (t *MockTask) Status() TaskStatus { return t.TaskStatus }

// Execute runs ExecuteFn.
func (t *MockTask) Execute(ctx context.Context) error {
	t.executions.Add(1)
	return t.ExecuteFn(ctx)
}

// Executions reports how many times Execute was called.
func (t *MockTask) Executions() int {
	return int(t.executions.Load())
}
