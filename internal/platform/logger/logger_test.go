package logger_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/deeptattoo/deeptattoo-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	tests := []struct {
		name        string
		level       string
		debugLogged bool
		infoLogged  bool
	}{
		{name: "debug level", level: "debug", debugLogged: true, infoLogged: true},
		{name: "info level", level: "info", debugLogged: false, infoLogged: true},
		{name: "error level", level: "ERROR", debugLogged: false, infoLogged: false},
		{name: "invalid level falls back to info", level: "verbose", debugLogged: false, infoLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &logger.TestLogBuffer{}
			l, err := logger.Setup(logger.LoggerConfig{Level: tt.level, Output: buf})
			require.NoError(t, err)
			require.NotNil(t, l)

			l.Debug("debug message")
			l.Info("info message")

			assert.Equal(t, tt.debugLogged, strings.Contains(buf.String(), "debug message"))
			assert.Equal(t, tt.infoLogged, strings.Contains(buf.String(), "info message"))
			assert.Same(t, l, slog.Default(), "Setup should install the logger as default")
		})
	}
}

func TestSetup_JSONOutput(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	buf := &logger.TestLogBuffer{}
	l, err := logger.Setup(logger.LoggerConfig{Level: "info", Output: buf})
	require.NoError(t, err)

	l.Info("design created", slog.String("design_id", "abc"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "design created", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["design_id"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	_, scoped := logger.NewTestLogger()
	_, fallback := logger.NewTestLogger()

	t.Run("returns logger stored in context", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), scoped)
		assert.Same(t, scoped, logger.FromContext(ctx))
		assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
	})

	t.Run("uses fallback when context is empty", func(t *testing.T) {
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("nil fallback yields default logger", func(t *testing.T) {
		assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))
	})

	t.Run("nil logger is not stored", func(t *testing.T) {
		ctx := logger.WithLogger(context.Background(), nil)
		assert.Same(t, fallback, logger.FromContextOrDefault(ctx, fallback))
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	level, ok := logger.ParseLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, level)

	level, ok = logger.ParseLevel("nope")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, level)
}
