package mocks

import (
	"context"
	"strings"

	"github.com/deeptattoo/deeptattoo-api/internal/service/auth"
	"github.com/google/uuid"
)

// MockJWTService implements auth.JWTService without signing anything.
// By default tokens are "access:<uuid>" and "refresh:<uuid>", and the
// Validate methods accept exactly those shapes.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

var _ auth.JWTService = (*MockJWTService)(nil)

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return auth.TokenTypeAccess + ":" + userID.String(), nil
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return parseFakeToken(tokenString, auth.TokenTypeAccess, auth.ErrInvalidToken)
}

func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return auth.TokenTypeRefresh + ":" + userID.String(), nil
}

func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return parseFakeToken(tokenString, auth.TokenTypeRefresh, auth.ErrInvalidRefreshToken)
}

func parseFakeToken(token, wantType string, invalid error) (*auth.Claims, error) {
	tokenType, rawID, ok := strings.Cut(token, ":")
	if !ok {
		return nil, invalid
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, invalid
	}
	if tokenType != wantType {
		return nil, auth.ErrWrongTokenType
	}
	return &auth.Claims{UserID: userID, Subject: rawID, TokenType: tokenType}, nil
}
