package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	validPassword := "correct-horse-battery"

	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  error
	}{
		{"valid user", "ink@example.com", "inkfan", validPassword, nil},
		{"empty email", "", "inkfan", validPassword, ErrEmptyEmail},
		{"malformed email", "ink.example.com", "inkfan", validPassword, ErrInvalidEmail},
		{"email without domain dot", "ink@example", "inkfan", validPassword, ErrInvalidEmail},
		{"short username", "ink@example.com", "ab", validPassword, ErrInvalidUsername},
		{"username with spaces", "ink@example.com", "ink fan", validPassword, ErrInvalidUsername},
		{"short password", "ink@example.com", "inkfan", "short", ErrPasswordTooShort},
		{"long password", "ink@example.com", "inkfan", strings.Repeat("p", 73), ErrPasswordTooLong},
		{"missing password", "ink@example.com", "inkfan", "", ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			user, err := NewUser(tt.email, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, user.Email)
			assert.Equal(t, tt.username, user.Username)
			assert.False(t, user.IsPro)
			assert.Nil(t, user.ProSubscriptionDate)
		})
	}
}

func TestUser_ValidateWithHash(t *testing.T) {
	t.Parallel()

	user, err := NewUser("ink@example.com", "inkfan", "correct-horse-battery")
	require.NoError(t, err)

	user.Password = ""
	user.HashedPassword = "$2a$10$hash"
	assert.NoError(t, user.Validate())
}

func TestUser_ActivateSubscription(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pro plan upgrades user", func(t *testing.T) {
		t.Parallel()
		user := &User{}
		require.NoError(t, user.ActivateSubscription(PlanProYearly, now))
		assert.True(t, user.IsPro)
		require.NotNil(t, user.ProSubscriptionDate)
		assert.Equal(t, now, *user.ProSubscriptionDate)
	})

	t.Run("free plan is rejected", func(t *testing.T) {
		t.Parallel()
		user := &User{}
		assert.ErrorIs(t, user.ActivateSubscription(PlanFree, now), ErrInvalidPlan)
		assert.False(t, user.IsPro)
	})

	t.Run("unknown plan is rejected", func(t *testing.T) {
		t.Parallel()
		user := &User{}
		assert.ErrorIs(t, user.ActivateSubscription("lifetime", now), ErrInvalidPlan)
		assert.False(t, SubscriptionPlan("lifetime").Valid())
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("prompt", "is required", nil)
	assert.Equal(t, "invalid prompt: is required", err.Error())
	assert.ErrorIs(t, err, ErrValidation)

	wrapped := NewValidationError("id", "has invalid format", ErrInvalidID)
	assert.ErrorIs(t, wrapped, ErrInvalidID)
	assert.ErrorIs(t, wrapped, ErrValidation)
}

func TestUsageDay(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2025, time.March, 2, 2, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), UsageDay(ts))
}
