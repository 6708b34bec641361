package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. DEEPTATTOO_SERVER_PORT maps to server.port.
const EnvPrefix = "DEEPTATTOO"

// DefaultHuggingFaceEndpoint is the FLUX.1-schnell inference route.
const DefaultHuggingFaceEndpoint = "https://router.huggingface.co/hf-inference/models/black-forest-labs/FLUX.1-schnell"

// Load configuration from an optional .env file, an optional config.yaml and
// environment variables. Environment variables take precedence over values
// from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct tag validation and the backend-specific rules that
// tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if cfg.Storage.Backend == StorageBackendS3 {
		s3 := cfg.Storage.S3
		switch {
		case s3.Bucket == "":
			return errors.New("validation failed: storage.s3.bucket is required for the s3 backend")
		case s3.Endpoint == "" && s3.AccountID == "":
			return errors.New("validation failed: storage.s3.endpoint or storage.s3.account_id is required for the s3 backend")
		case s3.AccessKeyID == "" || s3.SecretAccessKey == "":
			return errors.New("validation failed: storage.s3 credentials are required for the s3 backend")
		}
	}

	if cfg.Storage.Backend == StorageBackendLocal && cfg.Storage.Local.Root == "" {
		return errors.New("validation failed: storage.local.root is required for the local backend")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 7*24*60)

	v.SetDefault("generation.backend", GenerationBackendHuggingFace)
	v.SetDefault("generation.endpoint", DefaultHuggingFaceEndpoint)
	v.SetDefault("generation.timeout_seconds", 120)

	v.SetDefault("storage.backend", StorageBackendLocal)
	v.SetDefault("storage.local.root", "./media")
	v.SetDefault("storage.local.media_url", "/media/")
	v.SetDefault("storage.s3.region", "auto")

	v.SetDefault("quota.daily_limit", 5)
	v.SetDefault("quota.atomic", false)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)
	v.SetDefault("task.stuck_task_age_minutes", 30)
	v.SetDefault("task.check_interval_minutes", 5)

	v.SetDefault("maintenance.schedule", "@daily")
	v.SetDefault("maintenance.usage_retention_days", 30)
}

// bindEnvs registers keys that have no default so AutomaticEnv can see them
// during Unmarshal.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"generation.api_token",
		"generation.model",
		"generation.base_url",
		"storage.s3.bucket",
		"storage.s3.endpoint",
		"storage.s3.account_id",
		"storage.s3.access_key_id",
		"storage.s3.secret_access_key",
		"storage.s3.media_domain",
	} {
		_ = v.BindEnv(key)
	}
}
