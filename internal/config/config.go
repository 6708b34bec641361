package config

// Config holds all application configuration.
// It organizes settings into logical groups, each handed to the component that owns it.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"      validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database"    validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth"        validate:"required"`
	Generation  GenerationConfig  `mapstructure:"generation"  validate:"required"`
	Storage     StorageConfig     `mapstructure:"storage"     validate:"required"`
	Quota       QuotaConfig       `mapstructure:"quota"       validate:"required"`
	Task        TaskConfig        `mapstructure:"task"        validate:"required"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int      `mapstructure:"port"                 validate:"required,gt=0,lt=65536"`
	LogLevel           string   `mapstructure:"log_level"            validate:"required,oneof=debug info warn error"`
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL            string `mapstructure:"url"              validate:"required,url"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"   validate:"gte=1"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"   validate:"gte=0"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gtfield=TokenLifetimeMinutes"`
}

// Generation backends.
const (
	GenerationBackendHuggingFace = "huggingface"
	GenerationBackendOpenAI      = "openai"
	GenerationBackendGemini      = "gemini"
)

// GenerationConfig selects and configures the text-to-image backend.
type GenerationConfig struct {
	Backend  string `mapstructure:"backend"   validate:"required,oneof=huggingface openai gemini"`
	Endpoint string `mapstructure:"endpoint"  validate:"required_if=Backend huggingface,omitempty,url"`
	APIToken string `mapstructure:"api_token" validate:"required"`
	// Model overrides the backend's default model label.
	Model string `mapstructure:"model"`
	// BaseURL overrides the SDK endpoint of the openai and gemini backends.
	BaseURL        string `mapstructure:"base_url"        validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// Storage backends.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// StorageConfig selects and configures where generated images are written.
type StorageConfig struct {
	Backend string             `mapstructure:"backend" validate:"required,oneof=local s3"`
	Local   LocalStorageConfig `mapstructure:"local"`
	S3      S3StorageConfig    `mapstructure:"s3"`
}

// LocalStorageConfig configures the filesystem backend.
type LocalStorageConfig struct {
	Root     string `mapstructure:"root"`
	MediaURL string `mapstructure:"media_url"`
}

// S3StorageConfig configures an S3-compatible backend such as Cloudflare R2.
// Either Endpoint or AccountID must be set; AccountID derives the R2 endpoint.
type S3StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"          validate:"omitempty,url"`
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	MediaDomain     string `mapstructure:"media_domain"`
}

// QuotaConfig configures the free-tier daily admission limit.
type QuotaConfig struct {
	DailyLimit int  `mapstructure:"daily_limit" validate:"required,gt=0"`
	Atomic     bool `mapstructure:"atomic"`
}

// TaskConfig configures the background task runner.
type TaskConfig struct {
	WorkerCount          int `mapstructure:"worker_count"           validate:"required,gt=0"`
	QueueSize            int `mapstructure:"queue_size"             validate:"required,gt=0"`
	StuckTaskAgeMinutes  int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
	CheckIntervalMinutes int `mapstructure:"check_interval_minutes" validate:"required,gt=0"`
}

// MaintenanceConfig configures scheduled housekeeping jobs.
type MaintenanceConfig struct {
	Schedule           string `mapstructure:"schedule"             validate:"required"`
	UsageRetentionDays int    `mapstructure:"usage_retention_days" validate:"required,gt=0"`
}
