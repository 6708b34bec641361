package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deeptattoo/deeptattoo-api/internal/api/shared"
	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/quota"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
	"github.com/deeptattoo/deeptattoo-api/internal/service/auth"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized, "Invalid token"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Invalid token"},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized, "Invalid refresh token"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "Authentication required"},
		{"quota", fmt.Errorf("gate: %w", quota.ErrQuotaExceeded), http.StatusForbidden, QuotaExceededMessage},
		{"not owned", service.ErrNotOwned, http.StatusForbidden, "You do not own this design"},
		{"design not found", service.ErrDesignNotFound, http.StatusNotFound, "Design not found"},
		{"store user not found", store.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"email exists", store.ErrEmailExists, http.StatusConflict, "Email already exists"},
		{
			"wrapped username exists",
			service.NewServiceError("update_profile", "failed", store.ErrUsernameExists),
			http.StatusConflict,
			"Username already exists",
		},
		{"style unavailable", service.ErrStyleUnavailable, http.StatusBadRequest, "Invalid style: not available"},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest, "Request body is required"},
		{
			"domain validation",
			domain.NewValidationError("prompt", "must not be empty", domain.ErrEmptyPrompt),
			http.StatusBadRequest,
			domain.NewValidationError("prompt", "must not be empty", domain.ErrEmptyPrompt).Error(),
		},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, "Invalid ID"},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest, "Invalid entity data"},
		{"unknown", errors.New("connection refused to postgres://admin:secret@db"), http.StatusInternalServerError,
			"An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantStatus, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.wantMessage, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  any
		want string
	}{
		{
			name: "missing prompt",
			req:  &CreateDesignRequest{Style: 1},
			want: "Invalid prompt: required field",
		},
		{
			name: "negative style",
			req:  &CreateDesignRequest{Prompt: "rose", Style: -1},
			want: "Invalid style: must be positive",
		},
		{
			name: "case-insensitive gender passes, unknown aspect ratio fails",
			req:  &CreateDesignRequest{Prompt: "rose", Style: 1, Gender: "UNISEX", AspectRatio: "5:4"},
			want: "Invalid aspect_ratio: invalid value",
		},
		{
			name: "bad email",
			req:  &LoginRequest{Email: "not-an-email", Password: "x"},
			want: "Invalid email: invalid email format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := shared.ValidateRequest(tt.req)
			assert.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
			assert.Equal(t, tt.want, SanitizeValidationError(err))
		})
	}

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("plain")))
}
