package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &Options{Level: slog.LevelDebug, Plain: true}))

	log.With("request_id", "abc").WithGroup("http").Warn("forbidden", "status", 403)

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "forbidden")
	assert.Contains(t, out, "request_id=abc")
	assert.Contains(t, out, "http.status=403")
	assert.NotContains(t, out, "\033[")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &Options{Level: slog.LevelWarn, Plain: true}))

	log.Info("hidden")
	log.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
