package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept", "product_id", 42)
	record := decodeLine(t, &buf)
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, float64(42), record["product_id"])
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	ctx := ContextWithRequestID(context.Background(), "req-123")
	log.WithContext(ctx).Info("tracked")

	record := decodeLine(t, &buf)
	assert.Equal(t, "req-123", record["request_id"])
}

func TestWithContext_NoRequestID(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "info")
	assert.Same(t, log, log.WithContext(context.Background()))

	_, ok := RequestIDFromContext(ContextWithRequestID(context.Background(), ""))
	assert.False(t, ok)
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "info").
		WithFields(map[string]any{"action": "view", "client": "10.0.0.1"}).
		Info("event")

	record := decodeLine(t, &buf)
	assert.Equal(t, "view", record["action"])
	assert.Equal(t, "10.0.0.1", record["client"])
}

func TestNewWithOptions_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.log")

	log := NewWithOptions(Options{Level: "info", File: path})
	log.Info("purge finished", "removed", 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"purge finished"`)
}
