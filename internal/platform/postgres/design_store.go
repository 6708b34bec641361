package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

// PostgresDesignStore implements the store.DesignStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDesignStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDesignStore creates a new PostgreSQL implementation of the DesignStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDesignStore(db store.DBTX, logger *slog.Logger) *PostgresDesignStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDesignStore{
		db:     db,
		logger: logger.With(slog.String("component", "design_store")),
	}
}

// Ensure PostgresDesignStore implements store.DesignStore interface
var _ store.DesignStore = (*PostgresDesignStore)(nil)

const designSelect = `
		SELECT d.id, d.user_id, d.prompt, d.style_id, s.name, s.display_name, d.status,
			d.image_reference, d.processing_duration, d.model_identifier, d.is_public,
			d.created_at, d.updated_at, %s
		FROM designs d
		JOIN tattoo_styles s ON s.id = d.style_id`

// Create implements store.DesignStore.Create
func (s *PostgresDesignStore) Create(ctx context.Context, design *domain.Design) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := design.Validate(); err != nil {
		log.Warn("design validation failed during create",
			slog.String("error", err.Error()),
			slog.String("design_id", design.ID.String()))
		return err
	}

	query := `
		INSERT INTO designs (id, user_id, prompt, style_id, status, image_reference,
			processing_duration, model_identifier, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		design.ID,
		design.UserID,
		design.Prompt,
		design.StyleID,
		design.Status,
		nullString(design.ImageReference),
		design.ProcessingDuration,
		design.ModelIdentifier,
		design.IsPublic,
		design.CreatedAt,
		design.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create design",
			slog.String("design_id", design.ID.String()),
			slog.String("user_id", design.UserID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("design created",
		slog.String("design_id", design.ID.String()),
		slog.String("user_id", design.UserID.String()),
		slog.String("style", design.StyleName))
	return nil
}

// GetByID implements store.DesignStore.GetByID
func (s *PostgresDesignStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Design, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(designSelect, "FALSE") + ` WHERE d.id = $1`
	design, err := scanDesign(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("design not found", slog.String("design_id", id.String()))
			return nil, store.ErrDesignNotFound
		}
		log.Error("failed to get design",
			slog.String("design_id", id.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return design, nil
}

// List implements store.DesignStore.List
func (s *PostgresDesignStore) List(ctx context.Context, filter store.DesignFilter) ([]*domain.Design, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args := buildDesignListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list designs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var designs []*domain.Design
	for rows.Next() {
		design, err := scanDesign(rows)
		if err != nil {
			log.Error("failed to scan design row", slog.String("error", err.Error()))
			return nil, err
		}
		designs = append(designs, design)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating design rows", slog.String("error", err.Error()))
		return nil, err
	}
	return designs, nil
}

func buildDesignListQuery(filter store.DesignFilter) (string, []any) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	favorite := "FALSE"
	if filter.Viewer != uuid.Nil {
		favorite = "EXISTS (SELECT 1 FROM favorites f WHERE f.design_id = d.id AND f.user_id = " +
			arg(filter.Viewer) + ")"
	}

	var where []string
	if filter.OwnerID != uuid.Nil {
		where = append(where, "d.user_id = "+arg(filter.OwnerID))
	}
	if filter.FavoritedBy != uuid.Nil {
		where = append(where, "EXISTS (SELECT 1 FROM favorites fb WHERE fb.design_id = d.id AND fb.user_id = "+
			arg(filter.FavoritedBy)+")")
	}
	if filter.PublicCompletedOnly {
		where = append(where, "d.is_public AND d.status = 'completed'")
	}
	if filter.StyleName != "" {
		where = append(where, "s.name = "+arg(filter.StyleName))
	}
	if filter.Search != "" {
		where = append(where, "d.prompt ILIKE "+arg("%"+escapeLike(filter.Search)+"%"))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(designSelect, favorite))
	if len(where) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\n\t\tORDER BY d.created_at DESC, d.id")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		b.WriteString(" OFFSET " + arg(filter.Offset))
	}
	return b.String(), args
}

// Finalize implements store.DesignStore.Finalize
func (s *PostgresDesignStore) Finalize(ctx context.Context, design *domain.Design) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("design_id", design.ID.String()))

	if !design.IsTerminal() {
		return fmt.Errorf("%w: finalize requires a terminal status, got %q", store.ErrInvalidEntity, design.Status)
	}
	if err := design.Validate(); err != nil {
		log.Warn("design validation failed during finalize", slog.String("error", err.Error()))
		return err
	}

	query := `
		UPDATE designs
		SET status = $1, image_reference = $2, processing_duration = $3,
			model_identifier = $4, updated_at = $5
		WHERE id = $6 AND status = 'processing'
	`
	result, err := s.db.ExecContext(ctx, query,
		design.Status,
		nullString(design.ImageReference),
		design.ProcessingDuration,
		design.ModelIdentifier,
		design.UpdatedAt,
		design.ID,
	)
	if err != nil {
		log.Error("failed to finalize design", slog.String("error", err.Error()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM designs WHERE id = $1)`, design.ID).
			Scan(&exists); err != nil {
			return MapError(err)
		}
		if !exists {
			return store.ErrDesignNotFound
		}
		log.Warn("design already finalized, refusing second terminal write",
			slog.String("status", string(design.Status)))
		return store.ErrDesignAlreadyFinal
	}

	log.Info("design finalized", slog.String("status", string(design.Status)))
	return nil
}

// SetPublic implements store.DesignStore.SetPublic
func (s *PostgresDesignStore) SetPublic(ctx context.Context, id uuid.UUID, public bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE designs SET is_public = $1, updated_at = $2 WHERE id = $3`,
		public, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update design visibility",
			slog.String("design_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrDesignNotFound)
}

// Delete implements store.DesignStore.Delete
func (s *PostgresDesignStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete design",
			slog.String("design_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrDesignNotFound); err != nil {
		return err
	}

	log.Info("design deleted", slog.String("design_id", id.String()))
	return nil
}

// WithTx implements store.DesignStore.WithTx
func (s *PostgresDesignStore) WithTx(tx *sql.Tx) store.DesignStore {
	return &PostgresDesignStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDesign(row rowScanner) (*domain.Design, error) {
	var d domain.Design
	var status string
	var reference sql.NullString
	var duration sql.NullFloat64

	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Prompt,
		&d.StyleID,
		&d.StyleName,
		&d.StyleDisplayName,
		&status,
		&reference,
		&duration,
		&d.ModelIdentifier,
		&d.IsPublic,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.IsFavorite,
	); err != nil {
		return nil, err
	}

	d.Status = domain.DesignStatus(status)
	d.ImageReference = reference.String
	if duration.Valid {
		v := duration.Float64
		d.ProcessingDuration = &v
	}
	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
