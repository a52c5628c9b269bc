package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates with default config", func(t *testing.T) {
		l := New(nil)
		assert.NotNil(t, l)
		assert.NotNil(t, l.Logger)
	})

	t.Run("creates with custom config", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{
			Level:  "debug",
			Format: "json",
			Output: buf,
		})
		require.NotNil(t, l)

		l.Info("test message")
		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("creates text format logger", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{
			Level:  "info",
			Format: "text",
			Output: buf,
		})

		l.Info("test message")
		output := buf.String()
		assert.Contains(t, output, "test message")
		// Text format should not be JSON
		assert.False(t, strings.HasPrefix(output, "{"))
	})
}

func TestNewZapLogger(t *testing.T) {
	t.Run("creates with default config", func(t *testing.T) {
		l, err := NewZapLogger(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("creates with custom level", func(t *testing.T) {
		l, err := NewZapLogger(&Config{Level: "warn", Format: "json"})
		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestLogger_Levels(t *testing.T) {
	t.Run("debug suppressed at info level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "info", Format: "json", Output: buf})

		l.Debug("hidden")
		assert.Empty(t, buf.String())

		l.Info("visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("warn level filters info", func(t *testing.T) {
		buf := &bytes.Buffer{}
		l := New(&Config{Level: "warn", Format: "json", Output: buf})

		l.Info("hidden")
		assert.Empty(t, buf.String())

		l.Warn("visible")
		assert.Contains(t, buf.String(), "visible")
	})
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	child := l.With("component", "gallery")
	child.Info("message")

	assert.Contains(t, buf.String(), "gallery")
}

func TestContextLogger(t *testing.T) {
	t.Run("round trips through context", func(t *testing.T) {
		l := New(nil)
		ctx := ContextWithLogger(context.Background(), l)
		got := FromContext(ctx)
		assert.Same(t, l, got)
	})

	t.Run("returns default when absent", func(t *testing.T) {
		got := FromContext(context.Background())
		assert.NotNil(t, got)
	})
}
