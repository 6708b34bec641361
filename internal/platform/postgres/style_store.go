package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
)

// PostgresStyleStore reads the tattoo style catalog.
type PostgresStyleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.StyleStore = (*PostgresStyleStore)(nil)

// NewPostgresStyleStore creates a style store. A nil logger uses slog.Default.
func NewPostgresStyleStore(db store.DBTX, logger *slog.Logger) *PostgresStyleStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStyleStore{
		db:     db,
		logger: logger.With(slog.String("component", "style_store")),
	}
}

// ListActive implements store.StyleStore.ListActive
func (s *PostgresStyleStore) ListActive(ctx context.Context) ([]*domain.Style, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, display_name, description, is_active
		FROM tattoo_styles
		WHERE is_active
		ORDER BY display_name
	`)
	if err != nil {
		log.Error("failed to list styles", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var styles []*domain.Style
	for rows.Next() {
		var style domain.Style
		if err := rows.Scan(&style.ID, &style.Name, &style.DisplayName, &style.Description, &style.IsActive); err != nil {
			log.Error("failed to scan style row", slog.String("error", err.Error()))
			return nil, err
		}
		styles = append(styles, &style)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return styles, nil
}

// GetByID implements store.StyleStore.GetByID
func (s *PostgresStyleStore) GetByID(ctx context.Context, id int64) (*domain.Style, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var style domain.Style
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, display_name, description, is_active
		FROM tattoo_styles
		WHERE id = $1
	`, id).Scan(&style.ID, &style.Name, &style.DisplayName, &style.Description, &style.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("style not found", slog.Int64("style_id", id))
			return nil, store.ErrStyleNotFound
		}
		log.Error("failed to get style", slog.Int64("style_id", id), slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &style, nil
}
