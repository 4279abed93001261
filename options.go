package gloo

import (
	"log/slog"

	"github.com/gogpu/gloo/glir"
)

// ContextOption configures a Context during creation.
//
// Example:
//
//	// Deferred: objects queue commands until Bind is called
//	ctx := gloo.NewContext()
//
//	// Bound immediately, with a driver error callback
//	ctx := gloo.NewContext(
//	    gloo.WithDriver(soft.New()),
//	    gloo.WithErrorHandler(func(err error) { log.Println(err) }),
//	)
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	driver  glir.Driver
	onError func(error)
	journal bool
	logger  *slog.Logger
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		journal: true,
	}
}

// WithDriver binds the Context to a driver at creation, as Bind does.
func WithDriver(d glir.Driver) ContextOption {
	return func(o *contextOptions) {
		o.driver = d
	}
}

// WithErrorHandler sets the callback receiving driver errors found while
// commands are applied. The errors are *glir.DriverStateError values. The
// callback runs on the goroutine that flushes.
func WithErrorHandler(fn func(error)) ContextOption {
	return func(o *contextOptions) {
		o.onError = fn
	}
}

// WithJournal enables or disables the replay journal. With the journal on
// (the default), Recreate restores object contents after context loss.
// With it off, objects re-emit their shape, format and attachments but
// texture and buffer contents are lost.
func WithJournal(enabled bool) ContextOption {
	return func(o *contextOptions) {
		o.journal = enabled
	}
}

// WithLogger sets the logger for this Context, its interpreter and driver.
// Without it the package logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) ContextOption {
	return func(o *contextOptions) {
		o.logger = l
	}
}
