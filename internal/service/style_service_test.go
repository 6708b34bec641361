package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/mocks"
	"github.com/deeptattoo/deeptattoo-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleService_ListActiveStyles(t *testing.T) {
	t.Parallel()

	t.Run("inactive styles are hidden", func(t *testing.T) {
		svc := service.NewStyleService(mocks.NewMockStyleStore(traditional, gothicText, retired), testLogger())

		styles, err := svc.ListActiveStyles(context.Background())
		require.NoError(t, err)
		require.Len(t, styles, 2)
		assert.Equal(t, "Gothic Text", styles[0].DisplayName)
		assert.Equal(t, "Traditional", styles[1].DisplayName)
	})

	t.Run("empty catalog is an empty list", func(t *testing.T) {
		svc := service.NewStyleService(mocks.NewMockStyleStore(), nil)

		styles, err := svc.ListActiveStyles(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, styles)
		assert.Empty(t, styles)
	})

	t.Run("store failure", func(t *testing.T) {
		styles := mocks.NewMockStyleStore()
		styles.ListActiveFn = func(context.Context) ([]*domain.Style, error) {
			return nil, errors.New("db down")
		}
		svc := service.NewStyleService(styles, nil)

		_, err := svc.ListActiveStyles(context.Background())
		var svcErr *service.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "list_styles", svcErr.Operation)
	})
}
