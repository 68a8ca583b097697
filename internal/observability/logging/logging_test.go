package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Service:     ServiceInfo{Name: "task-reminder", Version: "test"},
		Environment: EnvProd,
		Module:      Module("reminder"),
		Level:       slog.LevelInfo,
		Output:      &buf,
	})

	ctx := WithRunID(WithRequestID(context.Background(), "req-1"), "run-1")
	logger.InfoContext(ctx, "cycle finished", slog.Int("presented", 3))
	logger.DebugContext(ctx, "filtered out")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "cycle finished", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "run-1", record["run_id"])
	assert.Equal(t, "task-reminder", record["service"])
	assert.Equal(t, "reminder", record["module"])
	assert.EqualValues(t, 3, record["presented"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
