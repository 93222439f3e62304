// Package panicerr turns panics inside background work into ordinary errors.
package panicerr

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
)

// Safe wraps fn so a panic is returned as an error instead of crashing the process.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return Safe(func() error { return fn(ctx) })()
	}
}

// Run executes fn and logs (rather than returns) any error or panic.
// Event handlers and watchers use it so one bad event does not stop the loop.
func Run(ctx context.Context, name string, fn func(context.Context) error) {
	if err := SafeContext(fn)(ctx); err != nil {
		slog.ErrorContext(ctx, "background job failed", "job", name, "error", err)
	}
}
