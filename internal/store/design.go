package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/deeptattoo/deeptattoo-api/internal/domain"
)

// DesignFilter narrows design listings. Zero values mean "no constraint".
type DesignFilter struct {
	// OwnerID restricts results to one user's designs.
	OwnerID uuid.UUID

	// FavoritedBy restricts results to designs the user has favorited.
	FavoritedBy uuid.UUID

	// Viewer, when set, fills Design.IsFavorite for that user.
	Viewer uuid.UUID

	// PublicCompletedOnly restricts results to the public gallery.
	PublicCompletedOnly bool

	// StyleName matches the style slug exactly.
	StyleName string

	// Search is a case-insensitive substring match on the prompt.
	Search string

	Limit  int
	Offset int
}

// DesignStore defines the interface for design record persistence.
type DesignStore interface {
	// Create saves a new design in processing state.
	// Returns validation errors from the domain Design if data is invalid.
	// Returns ErrInvalidEntity if the user or style does not exist.
	Create(ctx context.Context, design *domain.Design) error

	// GetByID retrieves a design by its unique ID.
	// Returns ErrDesignNotFound if the design does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Design, error)

	// List returns designs matching the filter, newest first.
	List(ctx context.Context, filter DesignFilter) ([]*domain.Design, error)

	// Finalize persists a terminal transition (status, image reference,
	// duration, model) in a single write. Only a design still in processing
	// state is updated.
	// Returns ErrDesignNotFound if the design does not exist and
	// ErrDesignAlreadyFinal if it already reached a terminal state.
	Finalize(ctx context.Context, design *domain.Design) error

	// SetPublic changes gallery visibility.
	// Returns ErrDesignNotFound if the design does not exist.
	SetPublic(ctx context.Context, id uuid.UUID, public bool) error

	// Delete removes a design and its favorites.
	// Returns ErrDesignNotFound if the design does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new DesignStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DesignStore
}
