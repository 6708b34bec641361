package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom")},
		{name: "user not found", err: store.ErrUserNotFound, notFound: true},
		{name: "wrapped design not found", err: fmt.Errorf("load: %w", store.ErrDesignNotFound), notFound: true},
		{name: "style not found", err: store.ErrStyleNotFound, notFound: true},
		{name: "email exists", err: store.ErrEmailExists, duplicate: true},
		{name: "username exists", err: store.ErrUsernameExists, duplicate: true},
		{name: "already final", err: store.ErrDesignAlreadyFinal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, store.IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, store.IsDuplicateError(tt.err))
		})
	}

	assert.ErrorIs(t, store.ErrDesignAlreadyFinal, store.ErrUpdateFailed)
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := store.NewStoreError("design", "finalize", "database error", cause)

	assert.Equal(t, "finalize operation on design failed: database error: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var storeErr *store.StoreError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
	assert.Equal(t, "design", storeErr.Entity)

	bare := store.NewStoreError("user", "create", "no rows", nil)
	assert.Equal(t, "create operation on user failed: no rows", bare.Error())
}
