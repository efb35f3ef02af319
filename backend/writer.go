package backend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/lang"
	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/platform"
)

// ErrWriteFile is returned when a configured file cannot be written.
var ErrWriteFile = lang.NewError("failed to write configured file")

// Writer writes configured files into the build directory. It ignores
// every other step.
type Writer struct {
	interp.Discard

	rt     platform.Runtime
	logger log.Logger
}

// NewWriter returns a Writer writing through rt.
func NewWriter(rt platform.Runtime, logger log.Logger) *Writer {
	return &Writer{rt: rt, logger: logger}
}

func (w *Writer) ConfigureFile(ctx context.Context, f *interp.ConfiguredFile) error {
	p := f.Path()

	if err := w.rt.WriteFile(p, []byte(f.Content)); err != nil {
		return ErrWriteFile.Wrap(err).With(slog.String("path", p))
	}

	w.logger.InfoContext(ctx, "wrote configured file", slog.String("path", p))

	return nil
}

// tee forwards each step to every Steps in order.
type tee []interp.Steps

// Tee returns a [interp.Steps] that forwards each step to all of steps. Every
// receiver sees the step even when an earlier one fails; the errors are
// joined.
func Tee(steps ...interp.Steps) interp.Steps {
	return tee(steps)
}

func (t tee) each(fn func(interp.Steps) error) error {
	var errs []error

	for _, s := range t {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (t tee) BuildStaticLibrary(ctx context.Context, target *interp.BuildTarget) error {
	return t.each(func(s interp.Steps) error { return s.BuildStaticLibrary(ctx, target) })
}

func (t tee) BuildExecutable(ctx context.Context, target *interp.BuildTarget) error {
	return t.each(func(s interp.Steps) error { return s.BuildExecutable(ctx, target) })
}

func (t tee) ConfigureFile(ctx context.Context, f *interp.ConfiguredFile) error {
	return t.each(func(s interp.Steps) error { return s.ConfigureFile(ctx, f) })
}

func (t tee) InstallHeaders(ctx context.Context, dir string, headers []string) error {
	return t.each(func(s interp.Steps) error { return s.InstallHeaders(ctx, dir, headers) })
}
