package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DesignStatus represents the generation state of a design request.
type DesignStatus string

// Possible design status values. Processing is the only non-terminal state.
const (
	DesignStatusProcessing DesignStatus = "processing"
	DesignStatusCompleted  DesignStatus = "completed"
	DesignStatusFailed     DesignStatus = "failed"
)

// MaxPromptLength is the longest prompt a user may submit, in characters.
const MaxPromptLength = 1500

// Common validation errors for Design
var (
	ErrEmptyDesignID      = errors.New("design ID cannot be empty")
	ErrEmptyDesignUserID  = errors.New("design user ID cannot be empty")
	ErrEmptyPrompt        = errors.New("prompt cannot be empty")
	ErrPromptTooLong      = errors.New("prompt must be at most 1500 characters")
	ErrEmptyDesignStyle   = errors.New("design style cannot be empty")
	ErrInvalidDesignState = errors.New("invalid design status")
	ErrImageReference     = errors.New("image reference must be set if and only if the design is completed")
)

// Design is one prompt-to-image generation request and its outcome.
// ImageReference, ProcessingDuration and ModelIdentifier are written once,
// by the terminal transition.
type Design struct {
	ID                 uuid.UUID    `json:"id"`
	UserID             uuid.UUID    `json:"user_id"`
	Prompt             string       `json:"prompt"`
	StyleID            int64        `json:"style_id"`
	StyleName          string       `json:"style_name"`
	StyleDisplayName   string       `json:"style_display_name"`
	Status             DesignStatus `json:"status"`
	ImageReference     string       `json:"image_reference,omitempty"`
	ProcessingDuration *float64     `json:"processing_duration,omitempty"` // seconds
	ModelIdentifier    string       `json:"model_identifier,omitempty"`
	IsPublic           bool         `json:"is_public"`
	IsFavorite         bool         `json:"is_favorite"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// NewDesign creates a design in processing state for the given style.
func NewDesign(userID uuid.UUID, style *Style, prompt string) (*Design, error) {
	if style == nil {
		return nil, ErrEmptyDesignStyle
	}

	now := time.Now().UTC()
	design := &Design{
		ID:               uuid.New(),
		UserID:           userID,
		Prompt:           strings.TrimSpace(prompt),
		StyleID:          style.ID,
		StyleName:        style.Name,
		StyleDisplayName: style.DisplayName,
		Status:           DesignStatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := design.Validate(); err != nil {
		return nil, err
	}

	return design, nil
}

// Validate checks the design's fields and the reference/status invariant.
func (d *Design) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDesignID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDesignUserID
	}

	if d.Prompt == "" {
		return ErrEmptyPrompt
	}

	if utf8.RuneCountInString(d.Prompt) > MaxPromptLength {
		return ErrPromptTooLong
	}

	if d.StyleID == 0 {
		return ErrEmptyDesignStyle
	}

	if !isValidDesignStatus(d.Status) {
		return ErrInvalidDesignState
	}

	if (d.ImageReference != "") != (d.Status == DesignStatusCompleted) {
		return ErrImageReference
	}

	return nil
}

// IsTerminal reports whether the design has reached completed or failed.
func (d *Design) IsTerminal() bool {
	return d.Status == DesignStatusCompleted || d.Status == DesignStatusFailed
}

// Complete records a successful generation. It fails unless the design is
// still processing and a reference is given.
func (d *Design) Complete(imageReference, model string, elapsed time.Duration) error {
	if d.Status != DesignStatusProcessing {
		return ErrInvalidStatusTransition
	}
	if imageReference == "" {
		return ErrImageReference
	}

	d.ImageReference = imageReference
	d.finish(DesignStatusCompleted, model, elapsed)
	return nil
}

// Fail records an unsuccessful generation. No image reference is kept.
func (d *Design) Fail(model string, elapsed time.Duration) error {
	if d.Status != DesignStatusProcessing {
		return ErrInvalidStatusTransition
	}

	d.ImageReference = ""
	d.finish(DesignStatusFailed, model, elapsed)
	return nil
}

func (d *Design) finish(status DesignStatus, model string, elapsed time.Duration) {
	seconds := elapsed.Seconds()
	d.Status = status
	d.ModelIdentifier = model
	d.ProcessingDuration = &seconds
	d.UpdatedAt = time.Now().UTC()
}

func isValidDesignStatus(status DesignStatus) bool {
	switch status {
	case DesignStatusProcessing, DesignStatusCompleted, DesignStatusFailed:
		return true
	}
	return false
}
