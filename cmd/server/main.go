// Package main implements the entry point for the DeepTattoo API server,
// which serves the HTTP API, runs background image generation and schedules
// maintenance jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
)

func main() {
	migrateCmd := flag.String("migrate", "", "Run a database migration command (up, down, status, version, ...) and exit")
	flag.Parse()

	if err := run(*migrateCmd, flag.Args()); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database and either executes a
// migration command or runs the application until SIGINT/SIGTERM.
func run(migrateCmd string, migrateArgs []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, logger, migrateCmd, migrateArgs...)
	}

	if cfg.Database.MigrateOnStart {
		if err := handleMigrations(ctx, db, logger, "up"); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
