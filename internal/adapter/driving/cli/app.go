// Package cli is the command-line driving adapter. Commands translate flags
// into calls on the application services and render the results.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ericfisherdev/towerpanel/internal/application"
)

// Options are the global flags, passed to the Bootstrap function.
type Options struct {
	ConfigPath string
	Verbose    bool
	JSON       bool
	Stderr     io.Writer
}

// App holds the services a command may use.
type App struct {
	Session   *application.SessionService
	Workspace *application.Workspace
	UI        *application.UIStore
	Guard     *application.Guard
	Palette   *Palette
	Logger    *slog.Logger

	closers []func() error
}

// OnClose registers fn to run when the command finishes.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close runs the registered close functions in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Bootstrap builds the App once the global flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*App, error)
