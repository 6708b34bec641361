package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/deeptattoo/deeptattoo-api/internal/api/shared"
	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/deeptattoo/deeptattoo-api/internal/redact"
	"github.com/deeptattoo/deeptattoo-api/internal/service/auth"
	"github.com/google/uuid"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	tokens auth.TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(tokens auth.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the bearer access token and adds the user ID to the
// request context. Requests without a valid token get 401.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			if r.Header.Get("Authorization") == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			} else {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			}
			return
		}

		userID, ok := m.validate(w, r, token)
		if !ok {
			return
		}
		next.ServeHTTP(w, withUser(r, userID))
	})
}

// OptionalAuthenticate attaches the user ID when a valid bearer token is
// present and otherwise lets the request through anonymously. A present but
// invalid token is still rejected.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}
		userID, ok := m.validate(w, r, token)
		if !ok {
			return
		}
		next.ServeHTTP(w, withUser(r, userID))
	})
}

func (m *AuthMiddleware) validate(w http.ResponseWriter, r *http.Request, token string) (uuid.UUID, bool) {
	claims, err := m.tokens.ValidateToken(r.Context(), token)
	if err == nil {
		return claims.UserID, true
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
	default:
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("failed to validate token", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
	}
	return uuid.Nil, false
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func withUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := shared.WithUserID(r.Context(), userID)
	log := logger.FromContext(ctx).With(slog.String("user_id", userID.String()))
	return r.WithContext(logger.WithLogger(ctx, log))
}

// GetUserID extracts the user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.UserIDFromContext(r.Context())
}
