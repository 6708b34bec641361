package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deeptattoo/deeptattoo-api/internal/domain"
	"github.com/deeptattoo/deeptattoo-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var designColumns = []string{
	"id", "user_id", "prompt", "style_id", "name", "display_name", "status",
	"image_reference", "processing_duration", "model_identifier", "is_public",
	"created_at", "updated_at", "is_favorite",
}

func newDesign(t *testing.T) *domain.Design {
	t.Helper()

	design, err := domain.NewDesign(uuid.New(), &domain.Style{ID: 2, Name: "gothic_text", DisplayName: "Gothic Text"}, "a raven")
	require.NoError(t, err)
	return design
}

func TestPostgresDesignStore_Create(t *testing.T) {
	t.Parallel()

	t.Run("inserts processing design", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())
		design := newDesign(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO designs")).
			WithArgs(design.ID, design.UserID, "a raven", int64(2), "processing",
				nil, nil, "", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), design))
	})

	t.Run("unknown style maps to invalid entity", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO designs")).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "designs_style_id_fkey"})

		err := s.Create(context.Background(), newDesign(t))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("invalid design never reaches the database", func(t *testing.T) {
		db, _ := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())
		design := newDesign(t)
		design.ImageReference = "https://example.com/x.png"

		assert.ErrorIs(t, s.Create(context.Background(), design), domain.ErrImageReference)
	})
}

func TestPostgresDesignStore_GetByID(t *testing.T) {
	t.Parallel()

	t.Run("maps row", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())

		id, userID := uuid.New(), uuid.New()
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("FROM designs d")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(designColumns).AddRow(
				id.String(), userID.String(), "a raven", int64(2), "gothic_text", "Gothic Text", "completed",
				"https://media.example.com/x.png", 4.5, "FLUX.1-schnell", true, now, now, false,
			))

		got, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, domain.DesignStatusCompleted, got.Status)
		assert.Equal(t, "https://media.example.com/x.png", got.ImageReference)
		require.NotNil(t, got.ProcessingDuration)
		assert.Equal(t, 4.5, *got.ProcessingDuration)
		assert.Equal(t, "Gothic Text", got.StyleDisplayName)
		assert.True(t, got.IsPublic)
	})

	t.Run("processing design has no reference or duration", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())

		id := uuid.New()
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("FROM designs d")).
			WillReturnRows(sqlmock.NewRows(designColumns).AddRow(
				id.String(), uuid.New().String(), "a raven", int64(2), "gothic_text", "Gothic Text", "processing",
				nil, nil, "", false, now, now, false,
			))

		got, err := s.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Empty(t, got.ImageReference)
		assert.Nil(t, got.ProcessingDuration)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("FROM designs d")).
			WillReturnRows(sqlmock.NewRows(designColumns))

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrDesignNotFound)
	})
}

func TestPostgresDesignStore_Finalize(t *testing.T) {
	t.Parallel()

	finalizeSQL := regexp.QuoteMeta("WHERE id = $6 AND status = 'processing'")
	existsSQL := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM designs WHERE id = $1)")

	completed := func(t *testing.T) *domain.Design {
		d := newDesign(t)
		require.NoError(t, d.Complete("https://media.example.com/"+d.ID.String()+".png", "FLUX.1-schnell", 2*time.Second))
		return d
	}

	t.Run("writes terminal state once", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())
		d := completed(t)

		mock.ExpectExec(finalizeSQL).
			WithArgs("completed", d.ImageReference, 2.0, "FLUX.1-schnell", sqlmock.AnyArg(), d.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Finalize(context.Background(), d))
	})

	t.Run("failed design stores null reference", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())
		d := newDesign(t)
		require.NoError(t, d.Fail("FLUX.1-schnell", time.Second))

		mock.ExpectExec(finalizeSQL).
			WithArgs("failed", nil, 1.0, "FLUX.1-schnell", sqlmock.AnyArg(), d.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Finalize(context.Background(), d))
	})

	t.Run("second terminal write is refused", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())
		d := completed(t)

		mock.ExpectExec(finalizeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(existsSQL).WithArgs(d.ID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		assert.ErrorIs(t, s.Finalize(context.Background(), d), store.ErrDesignAlreadyFinal)
	})

	t.Run("missing design", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())
		d := completed(t)

		mock.ExpectExec(finalizeSQL).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(existsSQL).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		assert.ErrorIs(t, s.Finalize(context.Background(), d), store.ErrDesignNotFound)
	})

	t.Run("processing design is rejected", func(t *testing.T) {
		db, _ := newMock(t)
		s := NewPostgresDesignStore(db, discardLogger())

		assert.ErrorIs(t, s.Finalize(context.Background(), newDesign(t)), store.ErrInvalidEntity)
	})
}

func TestPostgresDesignStore_SetPublicAndDelete(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresDesignStore(db, discardLogger())
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE designs SET is_public")).
		WithArgs(true, sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE designs SET is_public")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM designs")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.SetPublic(context.Background(), id, true))
	assert.ErrorIs(t, s.SetPublic(context.Background(), uuid.New(), false), store.ErrDesignNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrDesignNotFound)
}

func TestBuildDesignListQuery(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	viewer := uuid.New()

	tests := []struct {
		name     string
		filter   store.DesignFilter
		contains []string
		absent   []string
		args     []any
	}{
		{
			name:     "owner listing",
			filter:   store.DesignFilter{OwnerID: owner},
			contains: []string{"d.user_id = $1", "ORDER BY d.created_at DESC"},
			absent:   []string{"WHERE d.is_public", "LIMIT"},
			args:     []any{owner},
		},
		{
			name: "gallery with style, search and paging",
			filter: store.DesignFilter{
				Viewer:              viewer,
				PublicCompletedOnly: true,
				StyleName:           "pop_art",
				Search:              "50%_off",
				Limit:               20,
				Offset:              40,
			},
			contains: []string{
				"f.user_id = $1",
				"d.is_public AND d.status = 'completed'",
				"s.name = $2",
				"d.prompt ILIKE $3",
				"LIMIT $4",
				"OFFSET $5",
			},
			args: []any{viewer, "pop_art", `%50\%\_off%`, 20, 40},
		},
		{
			name:     "favorites",
			filter:   store.DesignFilter{FavoritedBy: viewer, Viewer: viewer},
			contains: []string{"fb.user_id = $2"},
			args:     []any{viewer, viewer},
		},
		{
			name:     "no filter",
			filter:   store.DesignFilter{},
			contains: []string{"FALSE"},
			absent:   []string{"WHERE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildDesignListQuery(tt.filter)
			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			for _, fragment := range tt.absent {
				assert.NotContains(t, query, fragment)
			}
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestPostgresDesignStore_List(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresDesignStore(db, discardLogger())
	viewer := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY d.created_at DESC")).
		WithArgs(viewer, "dragon").
		WillReturnRows(sqlmock.NewRows(designColumns).
			AddRow(uuid.New().String(), uuid.New().String(), "red dragon", int64(1), "traditional", "Traditional", "completed",
				"/media/generated_tattoos/a.png", 3.2, "FLUX.1-schnell", true, now, now, true).
			AddRow(uuid.New().String(), uuid.New().String(), "blue dragon", int64(1), "traditional", "Traditional", "completed",
				"/media/generated_tattoos/b.png", 2.9, "FLUX.1-schnell", true, now.Add(-time.Hour), now, false))

	designs, err := s.List(context.Background(), store.DesignFilter{
		Viewer:              viewer,
		PublicCompletedOnly: true,
		Search:              "dragon",
	})

	require.NoError(t, err)
	require.Len(t, designs, 2)
	assert.True(t, designs[0].IsFavorite)
	assert.False(t, designs[1].IsFavorite)
}
