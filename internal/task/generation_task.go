package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/generation"
	"github.com/deeptattoo/deeptattoo-api/internal/storage"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrNilDesignStore = errors.New("design store cannot be nil")
	ErrNilGenerator   = errors.New("generator cannot be nil")
	ErrNilUploader    = errors.New("uploader cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyDesignID  = errors.New("design ID cannot be empty")
	ErrEmptyPrompt    = errors.New("prompt cannot be empty")
)

// DesignStore is the subset of store.DesignStore the generation job uses.
type DesignStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Design, error)
	Finalize(ctx context.Context, design *domain.Design) error
}

// generationPayload represents the serialized data stored in the task
type generationPayload struct {
	DesignID uuid.UUID `json:"design_id"`
	Prompt   string    `json:"prompt"`
}

// GenerationTask renders the image for one design and records the outcome.
// It calls the generator at most once per execution and at most one terminal
// write of the design lands.
type GenerationTask struct {
	id        uuid.UUID
	designID  uuid.UUID
	prompt    string
	designs   DesignStore
	generator generation.Generator
	uploader  storage.Uploader
	logger    *slog.Logger
	now       func() time.Time
	status    TaskStatus
}

// NewGenerationTask creates a task for designID. prompt is the fully composed
// prompt sent to the generator.
func NewGenerationTask(
	designID uuid.UUID,
	prompt string,
	designs DesignStore,
	generator generation.Generator,
	uploader storage.Uploader,
	logger *slog.Logger,
) (*GenerationTask, error) {
	return newGenerationTask(uuid.New(), designID, prompt, designs, generator, uploader, logger)
}

func newGenerationTask(
	id uuid.UUID,
	designID uuid.UUID,
	prompt string,
	designs DesignStore,
	generator generation.Generator,
	uploader storage.Uploader,
	logger *slog.Logger,
) (*GenerationTask, error) {
	if designs == nil {
		return nil, ErrNilDesignStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if uploader == nil {
		return nil, ErrNilUploader
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if designID == uuid.Nil {
		return nil, ErrEmptyDesignID
	}
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	return &GenerationTask{
		id:        id,
		designID:  designID,
		prompt:    prompt,
		designs:   designs,
		generator: generator,
		uploader:  uploader,
		logger:    logger.With("task_type", TaskTypeDesignGeneration, "design_id", designID),
		now:       time.Now,
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *GenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *GenerationTask) Type() string {
	return TaskTypeDesignGeneration
}

// DesignID returns the design this task finalizes.
func (t *GenerationTask) DesignID() uuid.UUID {
	return t.designID
}

// Payload returns the task data as a byte slice
func (t *GenerationTask) Payload() []byte {
	data, err := json.Marshal(generationPayload{DesignID: t.designID, Prompt: t.prompt})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *GenerationTask) Status() TaskStatus {
	return t.status
}

// Execute loads the design, generates and uploads the image, then completes or
// fails the design. A design that no longer exists, or that is already
// final, makes the run a no-op. If a terminal write fails, or the job panics,
// the design is forced to failed when possible. A panic is returned as
// ErrJobPanicked.
func (t *GenerationTask) Execute(ctx context.Context) (err error) {
	t.status = TaskStatusProcessing

	design, err := t.designs.GetByID(ctx, t.designID)
	if err != nil {
		if errors.Is(err, store.ErrDesignNotFound) {
			t.logger.Debug("design no longer exists, nothing to do")
			t.status = TaskStatusCompleted
			return nil
		}
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to load design: %w", err)
	}

	if design.IsTerminal() {
		t.logger.Info("design already finalized, skipping", "design_status", design.Status)
		t.status = TaskStatusCompleted
		return nil
	}

	start := t.now()
	defer func() {
		if p := recover(); p != nil {
			t.status = TaskStatusFailed
			t.logger.Error("generation job panicked", "panic", p)
			t.failAfterPanic(ctx, design, start)
			err = fmt.Errorf("%w: %v", ErrJobPanicked, p)
		}
	}()

	img, err := t.generator.Generate(ctx, t.prompt)
	if err != nil {
		if !errors.Is(err, generation.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
		}
		return t.fail(ctx, design, start, err)
	}

	model := img.Model
	if model == "" {
		model = t.generator.Model()
	}

	ref, err := t.uploader.Store(ctx, storage.DesignImageKey(design.ID), img.Data, "image/png")
	if err != nil {
		if !errors.Is(err, storage.ErrStorageFailed) {
			err = fmt.Errorf("%w: %w", storage.ErrStorageFailed, err)
		}
		return t.fail(ctx, design, start, err)
	}

	if err := design.Complete(ref, model, t.now().Sub(start)); err != nil {
		t.status = TaskStatusFailed
		return t.forceFailed(ctx, model, start, fmt.Errorf("failed to complete design: %w", err))
	}

	if err := t.designs.Finalize(context.WithoutCancel(ctx), design); err != nil {
		t.status = TaskStatusFailed
		return t.forceFailed(ctx, model, start, fmt.Errorf("failed to save completed design: %w", err))
	}

	t.status = TaskStatusCompleted
	t.logger.Info("design completed",
		"model", model,
		"duration_seconds", *design.ProcessingDuration)
	return nil
}

// fail records cause on the design. When ctx was cancelled the design is left
// processing so the run can be retried after restart.
func (t *GenerationTask) fail(ctx context.Context, design *domain.Design, start time.Time, cause error) error {
	t.status = TaskStatusFailed

	if ctxErr := ctx.Err(); ctxErr != nil {
		t.logger.Warn("generation interrupted, leaving design processing", "error", cause)
		return fmt.Errorf("generation interrupted: %w", errors.Join(ctxErr, cause))
	}

	t.logger.Error("design generation failed", "error", cause)

	model := t.generator.Model()
	if err := design.Fail(model, t.now().Sub(start)); err != nil {
		return t.forceFailed(ctx, model, start, errors.Join(cause, fmt.Errorf("failed to mark design failed: %w", err)))
	}
	if err := t.designs.Finalize(ctx, design); err != nil {
		return t.forceFailed(ctx, model, start, errors.Join(cause, fmt.Errorf("failed to save failed design: %w", err)))
	}
	return cause
}

// forceFailed runs after a terminal write did not land. It reloads the design
// and, if it is still processing, makes one more attempt to store it as failed
// so that it cannot stay processing once the task itself is marked failed.
// cause is always returned.
func (t *GenerationTask) forceFailed(ctx context.Context, model string, start time.Time, cause error) error {
	ctx = context.WithoutCancel(ctx)

	current, err := t.designs.GetByID(ctx, t.designID)
	if err != nil {
		t.logger.Error("could not reload design to mark it failed", "error", err)
		return errors.Join(cause, fmt.Errorf("failed to reload design: %w", err))
	}
	if current.Status != domain.DesignStatusProcessing {
		t.logger.Warn("design already final after write error", "design_status", current.Status)
		return cause
	}

	if err := current.Fail(model, t.now().Sub(start)); err != nil {
		return errors.Join(cause, err)
	}
	if err := t.designs.Finalize(ctx, current); err != nil {
		t.logger.Error("could not mark design failed", "error", err)
		return errors.Join(cause, fmt.Errorf("failed to force design failed: %w", err))
	}

	t.logger.Warn("design forced to failed after write error", "error", cause)
	return cause
}

func (t *GenerationTask) failAfterPanic(ctx context.Context, design *domain.Design, start time.Time) {
	defer func() {
		if p := recover(); p != nil {
			t.logger.Error("could not mark design failed after panic", "panic", p)
		}
	}()

	if design.Status != domain.DesignStatusProcessing {
		return
	}
	if err := design.Fail(t.generator.Model(), t.now().Sub(start)); err != nil {
		return
	}
	if err := t.designs.Finalize(context.WithoutCancel(ctx), design); err != nil {
		t.logger.Error("failed to save failed design after panic", "error", err)
	}
}
