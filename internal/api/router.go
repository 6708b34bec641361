package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/deeptattoo/deeptattoo-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/afero"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth    *AuthHandler
	Users   *UserHandler
	Styles  *StyleHandler
	Designs *DesignHandler
}

// RouterConfig holds the router-level settings.
type RouterConfig struct {
	// AllowedOrigins for CORS. Empty means any origin.
	AllowedOrigins []string

	// MediaFs, when set, is served read-only under MediaPath.
	MediaFs   afero.Fs
	MediaPath string
}

// NewRouter builds the HTTP handler for the whole API.
func NewRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewTraceMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TraceIDHeader},
		ExposedHeaders:   []string{middleware.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/token", h.Auth.Login)
		r.Post("/auth/token/refresh", h.Auth.RefreshToken)
		r.Get("/styles", h.Styles.ListStyles)

		r.With(authMiddleware.OptionalAuthenticate).Get("/gallery", h.Designs.Gallery)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", h.Users.GetMe)
			r.Patch("/users/me", h.Users.UpdateMe)
			r.Post("/subscriptions/verify-purchase", h.Users.VerifyPurchase)

			r.Post("/designs", h.Designs.CreateDesign)
			r.Get("/designs", h.Designs.ListDesigns)
			r.Get("/designs/{id}", h.Designs.GetDesign)
			r.Patch("/designs/{id}", h.Designs.UpdateDesign)
			r.Delete("/designs/{id}", h.Designs.DeleteDesign)
			r.Post("/designs/{id}/favorite", h.Designs.Favorite)
			r.Delete("/designs/{id}/unfavorite", h.Designs.Unfavorite)
			r.Get("/favorites", h.Designs.ListFavorites)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	if cfg.MediaFs != nil {
		prefix := "/" + strings.Trim(cfg.MediaPath, "/") + "/"
		files := http.FileServer(afero.NewHttpFs(afero.NewReadOnlyFs(cfg.MediaFs)))
		r.Handle(prefix+"*", http.StripPrefix(prefix, files))
	}

	return r
}
