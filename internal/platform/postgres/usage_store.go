package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
)

// PostgresUsageStore implements store.UsageStore on the api_usage table.
type PostgresUsageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.UsageStore = (*PostgresUsageStore)(nil)

// NewPostgresUsageStore creates a usage store. A nil logger uses slog.Default.
func NewPostgresUsageStore(db store.DBTX, logger *slog.Logger) *PostgresUsageStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUsageStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_store")),
	}
}

// GetCount implements store.UsageStore.GetCount
func (s *PostgresUsageStore) GetCount(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT requests_count
		FROM api_usage
		WHERE user_id = $1 AND endpoint = $2 AND usage_date = $3
	`, userID, endpoint, domain.UsageDay(day)).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to read usage counter",
			slog.String("user_id", userID.String()),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return count, nil
}

// Increment implements store.UsageStore.Increment
func (s *PostgresUsageStore) Increment(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO api_usage (user_id, endpoint, usage_date, requests_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, endpoint, usage_date)
		DO UPDATE SET requests_count = api_usage.requests_count + 1
		RETURNING requests_count
	`, userID, endpoint, domain.UsageDay(day)).Scan(&count)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to increment usage counter",
			slog.String("user_id", userID.String()),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return count, nil
}

// IncrementIfBelow implements store.UsageStore.IncrementIfBelow
func (s *PostgresUsageStore) IncrementIfBelow(
	ctx context.Context,
	userID uuid.UUID,
	endpoint string,
	day time.Time,
	limit int,
) (int, bool, error) {
	if limit <= 0 {
		count, err := s.GetCount(ctx, userID, endpoint, day)
		return count, false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO api_usage (user_id, endpoint, usage_date, requests_count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, endpoint, usage_date)
		DO UPDATE SET requests_count = api_usage.requests_count + 1
		WHERE api_usage.requests_count < $4
		RETURNING requests_count
	`, userID, endpoint, domain.UsageDay(day), limit).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict row was at the limit, so nothing was updated
		current, err := s.GetCount(ctx, userID, endpoint, day)
		return current, false, err
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to conditionally increment usage counter",
			slog.String("user_id", userID.String()),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return 0, false, MapError(err)
	}
	return count, true, nil
}

// Decrement implements store.UsageStore.Decrement
func (s *PostgresUsageStore) Decrement(ctx context.Context, userID uuid.UUID, endpoint string, day time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE api_usage
		SET requests_count = requests_count - 1
		WHERE user_id = $1 AND endpoint = $2 AND usage_date = $3 AND requests_count > 0
	`, userID, endpoint, domain.UsageDay(day))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to decrement usage counter",
			slog.String("user_id", userID.String()),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// DeleteBefore implements store.UsageStore.DeleteBefore
func (s *PostgresUsageStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM api_usage WHERE usage_date < $1`,
		domain.UsageDay(cutoff))
	if err != nil {
		return 0, MapError(err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return removed, nil
}
