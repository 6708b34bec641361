package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceError(t *testing.T) {
	t.Parallel()

	underlying := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		want    error
		wrapped bool
	}{
		{name: "nil stays nil", err: nil, want: nil},
		{name: "not owned passes through", err: ErrNotOwned, want: ErrNotOwned},
		{name: "store design not found", err: fmt.Errorf("lookup: %w", store.ErrDesignNotFound), want: ErrDesignNotFound},
		{name: "store user not found", err: store.ErrUserNotFound, want: ErrUserNotFound},
		{name: "store style not found", err: store.ErrStyleNotFound, want: ErrStyleUnavailable},
		{name: "unexpected error is wrapped", err: underlying, want: underlying, wrapped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NewServiceError("op", "something failed", tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}

			assert.ErrorIs(t, got, tt.want)
			var svcErr *ServiceError
			if tt.wrapped {
				require.ErrorAs(t, got, &svcErr)
				assert.Equal(t, "op", svcErr.Operation)
				assert.Equal(t, "service op failed: something failed: connection refused", got.Error())
			} else {
				assert.False(t, errors.As(got, &svcErr))
			}
		})
	}
}

func TestServiceError_WithoutCause(t *testing.T) {
	t.Parallel()

	err := &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	assert.Equal(t, "service create_service failed: db cannot be nil", err.Error())
	assert.Nil(t, err.Unwrap())
}
