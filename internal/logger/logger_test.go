package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.Info("hello", "track", "book-1")

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"track":"book-1"`)
}

func TestNew_ProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})

	log.Info("boot")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNew_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty"})

	log.Warn("sleep timer expired", "duration_min", 15)

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "sleep timer expired")
	assert.Contains(t, out, "duration_min=15")
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty", Level: slog.LevelWarn})

	log.Debug("hidden")
	log.Info("also hidden")
	assert.Empty(t, buf.String())

	log.Error("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "pretty"})

	log.With("engine", "espeak").Info("speaking")
	assert.Contains(t, buf.String(), "engine=espeak")
}
