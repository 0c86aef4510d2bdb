// Package logging builds the blendkey [log/slog] logger from the loaded
// configuration and carries it through a context.
//
// Commands obtain a per-component logger with [Component], so every record
// names the part of the editor that produced it:
//
//	logging.Component(ctx, "clipfile").Info("clip saved", slog.String("path", p))
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/blendkey/internal/config"
)

type ctxKey struct{}

// Setup builds a logger for cfg writing to stderr and installs it as the
// process default.
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWithWriter(cfg, os.Stderr)
}

// SetupWithWriter builds a logger for cfg writing to w and installs it as
// the process default.
//
// At debug level records carry their source location. Text records drop
// the timestamp below debug level, since they go to an interactive
// terminal.
func SetupWithWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	level := ParseLevel(cfg.EffectiveLogLevel())
	debug := level <= slog.LevelDebug

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}

	var handler slog.Handler

	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		if !debug {
			opts.ReplaceAttr = dropTime
		}

		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func dropTime(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.TimeKey {
		return slog.Attr{}
	}

	return a
}

// ParseLevel converts a level name to a slog.Level. Names are matched
// case-insensitively; unknown names map to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}

	return l
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component returns the context logger tagged with a component attribute,
// e.g. "editor" or "clipfile".
func Component(ctx context.Context, name string) *slog.Logger {
	return FromContext(ctx).With(slog.String("component", name))
}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the context logger, or slog.Default() when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
