package store

import (
	"context"

	"github.com/google/uuid"
)

// FavoriteStore records which designs a user has favorited.
type FavoriteStore interface {
	// Add favorites a design. Adding an existing favorite is a no-op.
	// Returns ErrDesignNotFound if the design does not exist.
	Add(ctx context.Context, userID, designID uuid.UUID) error

	// Remove deletes a favorite. Removing a missing favorite is a no-op.
	Remove(ctx context.Context, userID, designID uuid.UUID) error
}
