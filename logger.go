package gloo

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// packageHandler forwards records to the handler of the current package
// logger, so that loggers built on it follow later SetLogger calls.
// Attributes and groups added with WithAttrs and WithGroup are replayed on
// the current handler for each record.
type packageHandler struct {
	with []func(slog.Handler) slog.Handler
}

func (h packageHandler) handler() slog.Handler {
	cur := Logger().Handler()
	for _, fn := range h.with {
		cur = fn(cur)
	}
	return cur
}

func (h packageHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return Logger().Handler().Enabled(ctx, level)
}

func (h packageHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler().Handle(ctx, r)
}

func (h packageHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.extend(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h packageHandler) WithGroup(name string) slog.Handler {
	return h.extend(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h packageHandler) extend(fn func(slog.Handler) slog.Handler) packageHandler {
	with := make([]func(slog.Handler) slog.Handler, len(h.with), len(h.with)+1)
	copy(with, h.with)
	return packageHandler{with: append(with, fn)}
}

// followLogger returns a logger that always writes through the current
// package logger.
func followLogger() *slog.Logger { return slog.New(packageHandler{}) }

// loggerPtr stores the package logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the default logger for gloo. Contexts created
// without WithLogger, along with their interpreters and drivers, write
// through it, including contexts created before the call. By default gloo
// produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent
// default.
//
// Log levels used by gloo:
//   - [slog.LevelDebug]: command traffic, replay counts
//   - [slog.LevelInfo]: lifecycle events (bind, recreate, close)
//   - [slog.LevelWarn]: driver errors, deprecated constructors, lost contents
//
// Example:
//
//	gloo.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current default logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
