package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenValidator checks bearer tokens presented to the API.
type TokenValidator interface {
	// ValidateToken accepts only unexpired access tokens signed with the
	// service key. Failures map to ErrInvalidToken, ErrExpiredToken or
	// ErrWrongTokenType.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// JWTService issues and validates the access/refresh token pair returned by
// the register, login and refresh endpoints.
type JWTService interface {
	TokenValidator

	// GenerateToken issues a short-lived access token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// GenerateRefreshToken issues a long-lived token that can only be
	// exchanged for a new pair.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken is ValidateToken for refresh tokens, reporting
	// ErrInvalidRefreshToken and ErrExpiredRefreshToken instead.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of a token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"` // TokenTypeAccess or TokenTypeRefresh

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// IsRefresh reports whether the claims came from a refresh token.
func (c *Claims) IsRefresh() bool {
	return c != nil && c.TokenType == TokenTypeRefresh
}
