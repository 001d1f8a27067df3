package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

type ctxKey struct{}

var current atomic.Pointer[slog.Logger]

// New builds a logger writing text or JSON lines to w.
func New(w io.Writer, level string, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Init replaces the process logger and slog's default with one writing to stdout.
func Init(level string, json bool) {
	SetDefault(New(os.Stdout, level, json))
}

// SetDefault installs l as the process logger.
func SetDefault(l *slog.Logger) {
	current.Store(l)
	slog.SetDefault(l)
}

// ParseLevel maps debug/info/warn/error (any case) to a slog level; anything
// else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the process logger, initializing an info-level text logger on first use.
func Get() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	Init("info", false)
	return current.Load()
}

// NewContext stores l in ctx so request-scoped fields follow the call chain.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by NewContext, or the process logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return Get()
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

// Fatal logs at error level and exits with status 1. Deferred calls do not run.
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	os.Exit(1)
}

// With returns the process logger with the given attributes attached.
func With(args ...any) *slog.Logger {
	return Get().With(args...)
}
