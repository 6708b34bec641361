package store

import (
	"context"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
)

// StyleStore provides read access to the style catalog.
type StyleStore interface {
	// ListActive returns active styles ordered by display name.
	ListActive(ctx context.Context) ([]*domain.Style, error)

	// GetByID retrieves a style regardless of its active flag.
	// Returns ErrStyleNotFound if the style does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Style, error)
}
