package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/deeptattoo/deeptattoo-api/internal/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTaskStore_SaveTask(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, discardLogger())
	mt := task.NewMockTask(uuid.New(), task.TaskTypeDesignGeneration, []byte(`{"design_id":"x"}`))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs(mt.ID(), task.TaskTypeDesignGeneration, []byte(`{"design_id":"x"}`), "pending",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks")).
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, s.SaveTask(context.Background(), mt))
	assert.ErrorContains(t, s.SaveTask(context.Background(), mt), "failed to save task")
}

func TestPostgresTaskStore_UpdateTaskStatus(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresTaskStore(db, discardLogger())
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("SET status = $1, error_message = NULLIF($2, '')")).
		WithArgs("failed", "generation failed", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Unknown task IDs are a no-op
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.UpdateTaskStatus(context.Background(), id, task.TaskStatusFailed, "generation failed"))
	require.NoError(t, s.UpdateTaskStatus(context.Background(), uuid.New(), task.TaskStatusCompleted, ""))
}

func TestPostgresTaskStore_GetTasks(t *testing.T) {
	t.Parallel()

	columns := []string{"id", "type", "payload", "status", "error_message", "created_at", "updated_at"}
	now := time.Now().UTC()

	t.Run("pending", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, discardLogger())
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1")).
			WithArgs("pending").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), task.TaskTypeDesignGeneration, []byte(`{}`), "pending", nil, now, now))

		records, err := s.GetPendingTasks(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, id, records[0].ID)
		assert.Equal(t, task.TaskStatusPending, records[0].Status)
		assert.Empty(t, records[0].ErrorMessage)
	})

	t.Run("stuck processing", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresTaskStore(db, discardLogger())

		mock.ExpectQuery(regexp.QuoteMeta("AND updated_at < $2")).
			WithArgs("processing", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(uuid.New().String(), task.TaskTypeDesignGeneration, []byte(`{}`), "processing",
					"Reset after recovery", now, now))

		records, err := s.GetProcessingTasks(context.Background(), 30*time.Minute)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Reset after recovery", records[0].ErrorMessage)
	})
}
