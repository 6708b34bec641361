package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/postgres"
)

// setupAppDatabase opens the pgx-backed connection pool and verifies it with
// a ping.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns)
	return db, nil
}

// handleMigrations runs a goose command against the embedded migrations.
func handleMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger, command string, args ...string) error {
	logger.Info("Executing migrations", "command", command)
	if err := postgres.Migrate(ctx, db, command, logger, args...); err != nil {
		return err
	}
	logger.Info("Migrations finished", "command", command)
	return nil
}
