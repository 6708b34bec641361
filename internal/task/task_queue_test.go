package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue until full", func(t *testing.T) {
		t.Parallel()

		queue := NewTaskQueue(2, testLogger())

		require.NoError(t, queue.Enqueue(CreateMockTaskWithPayload("1")))
		require.NoError(t, queue.Enqueue(CreateMockTaskWithPayload("2")))

		err := queue.Enqueue(CreateMockTaskWithPayload("3"))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Equal(t, 2, queue.Len())
	})

	t.Run("tasks come out in order", func(t *testing.T) {
		t.Parallel()

		queue := NewTaskQueue(2, testLogger())
		first := CreateMockTaskWithPayload("first")
		second := CreateMockTaskWithPayload("second")
		require.NoError(t, queue.Enqueue(first))
		require.NoError(t, queue.Enqueue(second))

		ch := queue.Tasks()
		assert.Equal(t, first.ID(), (<-ch).ID())
		assert.Equal(t, second.ID(), (<-ch).ID())
	})

	t.Run("closed queue rejects tasks", func(t *testing.T) {
		t.Parallel()

		queue := NewTaskQueue(1, testLogger())
		queue.Close()
		queue.Close() // second close is a no-op

		err := queue.Enqueue(CreateMockTaskWithPayload("late"))
		assert.ErrorIs(t, err, ErrQueueClosed)

		_, open := <-queue.Tasks()
		assert.False(t, open)
	})
}
