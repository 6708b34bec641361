package main

import (
	"fmt"
	"log/slog"

	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
)

// loadAppConfig loads the application configuration from .env, config.yaml
// and environment variables.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// setupAppLogger installs the JSON logger at the configured level and logs
// a short summary of the loaded configuration.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"generation_backend", cfg.Generation.Backend,
		"storage_backend", cfg.Storage.Backend)
	l.Debug("Auth configuration",
		"jwt_secret_present", cfg.Auth.JWTSecret != "",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	return l, nil
}
