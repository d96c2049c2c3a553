package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havud29/asyncdep/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "json"})

	l.Info("dropped")
	l.Warn("kept", "frame", 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.EqualValues(t, 7, rec["frame"])
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LoggingConfig{Level: "debug", Format: "text"})

	l.Debug("frame loop starting")
	assert.Contains(t, buf.String(), `msg="frame loop starting"`)
}

func TestFollow_AppliesReloadedLevel(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	l := NewWithLevel(&buf, config.LoggingConfig{Level: "info", Format: "text"}, level)

	events := make(chan config.Event, 3)
	events <- config.Event{ChangedKeys: []string{"Loop"}, NewConfig: &config.Root{Logging: config.LoggingConfig{Level: "error"}}}
	events <- config.Event{ChangedKeys: []string{"Logging"}, NewConfig: &config.Root{Logging: config.LoggingConfig{Level: "debug"}}}
	close(events)

	Follow(context.Background(), events, level, l)

	assert.Equal(t, slog.LevelDebug, level.Level())
	assert.Contains(t, buf.String(), `msg="log level changed" level=DEBUG`)

	buf.Reset()
	l.Debug("visible now")
	assert.Contains(t, buf.String(), "visible now")
}

func TestFollow_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	level := new(slog.LevelVar)
	Follow(ctx, make(chan config.Event), level, NewWithLevel(&bytes.Buffer{}, config.LoggingConfig{}, level))

	assert.Equal(t, slog.LevelInfo, level.Level())
}
