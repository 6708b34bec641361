package postgres

import (
	"context"
	"log/slog"

	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

const favoritesDesignFKey = "favorites_design_id_fkey"

// PostgresFavoriteStore implements store.FavoriteStore.
type PostgresFavoriteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.FavoriteStore = (*PostgresFavoriteStore)(nil)

// NewPostgresFavoriteStore creates a favorite store. A nil logger uses slog.Default.
func NewPostgresFavoriteStore(db store.DBTX, logger *slog.Logger) *PostgresFavoriteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresFavoriteStore{
		db:     db,
		logger: logger.With(slog.String("component", "favorite_store")),
	}
}

// Add implements store.FavoriteStore.Add
func (s *PostgresFavoriteStore) Add(ctx context.Context, userID, designID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, design_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, design_id) DO NOTHING
	`, userID, designID)
	if err != nil {
		if IsForeignKeyViolation(err) && constraintName(err) == favoritesDesignFKey {
			return store.ErrDesignNotFound
		}
		log.Error("failed to add favorite",
			slog.String("user_id", userID.String()),
			slog.String("design_id", designID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Remove implements store.FavoriteStore.Remove
func (s *PostgresFavoriteStore) Remove(ctx context.Context, userID, designID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND design_id = $2`,
		userID, designID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to remove favorite",
			slog.String("user_id", userID.String()),
			slog.String("design_id", designID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}
