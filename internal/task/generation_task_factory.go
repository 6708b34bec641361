package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/deeptattoo/deeptattoo-api/internal/generation"
	"github.com/deeptattoo/deeptattoo-api/internal/storage"
	"github.com/google/uuid"
)

// GenerationTaskFactory creates GenerationTask instances, both for new
// designs and from persisted task records.
type GenerationTaskFactory struct {
	designs   DesignStore
	generator generation.Generator
	uploader  storage.Uploader
	logger    *slog.Logger
}

var _ Rehydrator = (*GenerationTaskFactory)(nil)

// NewGenerationTaskFactory creates a new factory for GenerationTasks
func NewGenerationTaskFactory(
	designs DesignStore,
	generator generation.Generator,
	uploader storage.Uploader,
	logger *slog.Logger,
) *GenerationTaskFactory {
	return &GenerationTaskFactory{
		designs:   designs,
		generator: generator,
		uploader:  uploader,
		logger:    logger.With("component", "generation_task_factory"),
	}
}

// CreateTask creates a new GenerationTask for the specified design
func (f *GenerationTaskFactory) CreateTask(designID uuid.UUID, prompt string) (*GenerationTask, error) {
	return NewGenerationTask(designID, prompt, f.designs, f.generator, f.uploader, f.logger)
}

// Rehydrate rebuilds a GenerationTask from its stored record, keeping the
// record's ID.
func (f *GenerationTaskFactory) Rehydrate(record Record) (Task, error) {
	if record.Type != TaskTypeDesignGeneration {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, record.Type)
	}

	var payload generationPayload
	if err := json.Unmarshal(record.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", record.Type, err)
	}

	task, err := newGenerationTask(
		record.ID,
		payload.DesignID,
		payload.Prompt,
		f.designs,
		f.generator,
		f.uploader,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	task.status = record.Status
	return task, nil
}
