package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "info", Format: "json"})

	logger.Debug("hidden")
	logger.Info("store updated", "op", "sort")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store updated", entry["msg"])
	assert.Equal(t, "sort", entry["op"])
}

func TestNew_Text(t *testing.T) {
	for _, color := range []bool{true, false} {
		var buf bytes.Buffer
		logger := New(&buf, Options{Level: "debug", Format: "text", Color: color})

		logger.Debug("session created", "session_id", "abc")
		assert.Contains(t, buf.String(), "session created")
		assert.Contains(t, buf.String(), "abc")
	}
}
