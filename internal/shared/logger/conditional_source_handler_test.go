package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionalSourceHandler(t *testing.T) {
	prodLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	debugLevels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

	tests := []struct {
		name       string
		level      slog.Level
		levels     []slog.Level
		wantSource bool
	}{
		{"info in production", slog.LevelInfo, prodLevels, false},
		{"warn in production", slog.LevelWarn, prodLevels, true},
		{"error in production", slog.LevelError, prodLevels, true},
		{"debug in production", slog.LevelDebug, prodLevels, false},
		{"info in debug mode", slog.LevelInfo, debugLevels, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			log := slog.New(NewConditionalSourceHandler(base, tt.levels...))

			log.Log(context.Background(), tt.level, "audit entry written", "action", "user_logged_in")

			out := buf.String()
			assert.Contains(t, out, "audit entry written")
			if tt.wantSource {
				assert.Contains(t, out, "source=")
			} else {
				assert.NotContains(t, out, "source=")
			}
		})
	}
}

func TestConditionalSourceHandler_WithAttrsKeepsLevels(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	log := slog.New(NewConditionalSourceHandler(base, slog.LevelError)).With("component", "gate")

	log.Error("audit write failed")

	assert.Contains(t, buf.String(), "component=gate")
	assert.Contains(t, buf.String(), "source=")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Infow("ignored", "k", "v")
	assert.NotNil(t, l.With("a", 1).Named("x"))
}
