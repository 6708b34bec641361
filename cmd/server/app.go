package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/deeptattoo/deeptattoo-api/internal/api"
	"github.com/deeptattoo/deeptattoo-api/internal/api/middleware"
	"github.com/deeptattoo/deeptattoo-api/internal/config"
	"github.com/deeptattoo/deeptattoo-api/internal/generation"
	"github.com/deeptattoo/deeptattoo-api/internal/maintenance"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/gemini"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/huggingface"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/localfs"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/openai"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/postgres"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/s3"
	"github.com/deeptattoo/deeptattoo-api/internal/quota"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
	"github.com/deeptattoo/deeptattoo-api/internal/service/auth"
	"github.com/deeptattoo/deeptattoo-api/internal/storage"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/deeptattoo/deeptattoo-api/internal/task"
	"github.com/spf13/afero"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore     store.UserStore
	designStore   store.DesignStore
	favoriteStore store.FavoriteStore
	styleStore    store.StyleStore
	usageStore    store.UsageStore
	taskStore     task.TaskStore

	// Platform adapters
	generator generation.Generator
	uploader  storage.Uploader
	mediaFs   afero.Fs

	// Services
	jwtService          auth.JWTService
	passwordVerifier    auth.PasswordVerifier
	admitter            quota.Admitter
	userService         service.UserService
	subscriptionService service.SubscriptionService
	styleService        service.StyleService
	designService       service.DesignService

	// Background work
	taskRunner *task.TaskRunner
	scheduler  *maintenance.Scheduler
}

// newApplication creates a new application instance with all dependencies initialized.
// Nothing is started; Run starts the workers, the scheduler and the HTTP server.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost)
	app.designStore = postgres.NewPostgresDesignStore(db, logger)
	app.favoriteStore = postgres.NewPostgresFavoriteStore(db, logger)
	app.styleStore = postgres.NewPostgresStyleStore(db, logger)
	app.usageStore = postgres.NewPostgresUsageStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.generator, err = newGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		return nil, err
	}
	app.uploader, app.mediaFs, err = newUploader(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	app.admitter = quota.New(app.usageStore, cfg.Quota, logger)

	factory := task.NewGenerationTaskFactory(app.designStore, app.generator, app.uploader, logger)
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:            cfg.Task.WorkerCount,
		QueueSize:              cfg.Task.QueueSize,
		StuckTaskAge:           time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
		StuckTaskCheckInterval: time.Duration(cfg.Task.CheckIntervalMinutes) * time.Minute,
	}, logger)
	app.taskRunner.RegisterRehydrator(task.TaskTypeDesignGeneration, factory)

	app.userService = service.NewUserService(app.userStore, app.admitter, db, logger)
	app.subscriptionService = service.NewSubscriptionService(app.userStore, service.AcceptAllVerifier{}, db, logger)
	app.styleService = service.NewStyleService(app.styleStore, logger)
	app.designService, err = service.NewDesignService(service.DesignServiceDeps{
		DB:        db,
		Designs:   app.designStore,
		Favorites: app.favoriteStore,
		Styles:    app.styleStore,
		Tasks:     app.taskStore,
		Admitter:  app.admitter,
		Factory:   factory,
		Runner:    app.taskRunner,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create design service: %w", err)
	}

	app.scheduler, err = maintenance.NewScheduler(cfg.Maintenance, app.usageStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create maintenance scheduler: %w", err)
	}

	logger.Info("Application initialized successfully",
		"generation_model", app.generator.Model(),
		"daily_limit", cfg.Quota.DailyLimit)
	return app, nil
}

// newGenerator selects the text-to-image backend.
func newGenerator(ctx context.Context, cfg config.GenerationConfig, logger *slog.Logger) (generation.Generator, error) {
	var (
		gen generation.Generator
		err error
	)
	switch cfg.Backend {
	case config.GenerationBackendHuggingFace:
		gen, err = huggingface.NewClient(cfg, logger)
	case config.GenerationBackendOpenAI:
		gen, err = openai.NewGenerator(cfg, logger)
	case config.GenerationBackendGemini:
		gen, err = gemini.NewGenerator(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s generator: %w", cfg.Backend, err)
	}
	return gen, nil
}

// newUploader selects the image storage backend. The returned filesystem is
// non-nil only for local storage, whose files the API serves itself.
func newUploader(cfg config.StorageConfig, logger *slog.Logger) (storage.Uploader, afero.Fs, error) {
	switch cfg.Backend {
	case config.StorageBackendLocal:
		u, err := localfs.NewUploader(cfg.Local, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return u, u.Fs(), nil
	case config.StorageBackendS3:
		u, err := s3.NewUploader(cfg.S3, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		return u, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Run starts the task runner and the maintenance scheduler, then serves HTTP
// until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.taskRunner.Start(ctx); err != nil {
		app.cleanup()
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	app.scheduler.Start()

	err := app.startHTTPServer(ctx, app.setupRouter())
	app.cleanup()
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupRouter mounts the API handlers.
func (app *application) setupRouter() http.Handler {
	handlers := api.Handlers{
		Auth:    api.NewAuthHandler(app.userService, app.userStore, app.jwtService, app.passwordVerifier, app.logger),
		Users:   api.NewUserHandler(app.userService, app.subscriptionService, app.logger),
		Styles:  api.NewStyleHandler(app.styleService),
		Designs: api.NewDesignHandler(app.designService, app.userService, app.logger),
	}

	return api.NewRouter(handlers, middleware.NewAuthMiddleware(app.jwtService), api.RouterConfig{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		MediaFs:        app.mediaFs,
		MediaPath:      mediaPath(app.config.Storage.Local.MediaURL),
	}, app.logger)
}

// mediaPath extracts the URL path local media is served under, so that both
// "/media/" and "http://host/media/" mount at /media/.
func mediaPath(mediaURL string) string {
	if u, err := url.Parse(mediaURL); err == nil && u.Path != "" && u.Path != "/" {
		return u.Path
	}
	return "/media/"
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if app.scheduler != nil {
		app.scheduler.Stop(ctx)
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
