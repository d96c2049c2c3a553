package logging

import (
	"context"
	"io"
	"slices"
	"log/slog"
	"os"
	"strings"

	"github.com/havud29/asyncdep/config"
)

// New builds the process logger from cfg. Text is easier to read locally;
// json suits log shippers.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg)
}

func NewWithWriter(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	return NewWithLevel(w, cfg, new(slog.LevelVar))
}

// NewWithLevel sets level from cfg and builds a logger that reads it on every
// record, so Follow can change it later.
func NewWithLevel(w io.Writer, cfg config.LoggingConfig, level *slog.LevelVar) *slog.Logger {
	level.Set(ParseLevel(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Follow applies the logging level of every reloaded config.Root to level
// until ctx is done or events is closed.
func Follow(ctx context.Context, events <-chan config.Event, level *slog.LevelVar, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if !slices.Contains(evt.ChangedKeys, "Logging") {
				continue
			}
			root, ok := evt.NewConfig.(*config.Root)
			if !ok {
				continue
			}
			next := ParseLevel(root.Logging.Level)
			if next == level.Level() {
				continue
			}
			level.Set(next)
			logger.Info("log level changed", "level", next.String())
		}
	}
}
