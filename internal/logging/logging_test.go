package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "text", &buf)

	logger.Info("process spawned", "slot", 1)

	assert.Contains(t, buf.String(), "process spawned")
	assert.Contains(t, buf.String(), "slot=1")
}

func TestNewLoggerWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelInfo, "JSON", &buf)

	logger.Info("process spawned", "name", "cpu")

	assert.Contains(t, buf.String(), `"msg":"process spawned"`)
	assert.Contains(t, buf.String(), `"name":"cpu"`)
}

func TestNewLoggerWithWriterLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("should not appear")
	logger.Warn("should appear")

	assert.NotContains(t, buf.String(), "should not appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestWithBoot(t *testing.T) {
	var buf bytes.Buffer
	logger, id := WithBoot(NewLoggerWithWriter(slog.LevelInfo, "text", &buf))

	_, err := uuid.Parse(id)
	require.NoError(t, err)

	logger.Info("kernel started")
	assert.Contains(t, buf.String(), "boot_id="+id)

	_, other := WithBoot(logger)
	assert.NotEqual(t, id, other)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}
