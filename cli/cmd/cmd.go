package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

type (
	kongKey   struct{}
	outputKey struct{}
)

// WithContext returns ctx carrying the parsed command line ktx.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

// kongContextFrom returns the command line stored by [WithContext], if any.
func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by [WithOutput], or stdout.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// openSource opens the named file, or stdin for "-". Closing the result
// never closes stdin.
func openSource(name string) (io.ReadCloser, error) {
	if name == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, ErrOpenSource.Wrap(err).With(slog.String("file", name))
	}

	return f, nil
}

// sourceName is the name used in diagnostics for a source.
func sourceName(name string) string {
	if name == stdinSource {
		return "<stdin>"
	}

	return name
}
