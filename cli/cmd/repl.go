package cmd

import (
	"context"
	"io"

	"github.com/ardnew/gomeson/backend"
	"github.com/ardnew/gomeson/cli/cmd/repl"
	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/log"
)

// Repl starts an interactive session. With --setup the project is
// configured first, so its variables and options are in scope.
type Repl struct {
	Project `embed:""`

	Setup bool `help:"Configure the project before starting" short:"s"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, r.builder(), cacheDir, log.Default().Named("repl"))
}

// builder returns the session builder. Build steps are reported the
// way setup reports them.
func (r *Repl) builder() repl.Builder {
	return func(ctx context.Context, out io.Writer) (*interp.Interpreter, error) {
		ctx = WithOutput(ctx, out)
		steps := backend.NewPrinter(out, log.Default().Named("backend"))

		if r.Setup {
			in, _, err := r.configure(ctx, steps)

			return in, err
		}

		in, _, _, err := r.interpreter(ctx, steps)

		return in, err
	}
}
