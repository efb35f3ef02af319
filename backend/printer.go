// Package backend receives the build description an interpreter resolves.
//
// Each type here implements [interp.Steps]: [Printer] reports the steps
// as they happen, [Recorder] collects them into a [Description] that can be
// filtered and serialized, and [Writer] materializes configured files. Use
// [Tee] to drive several at once.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/log"
)

// Printer writes one line per build step.
type Printer struct {
	w      io.Writer
	logger log.Logger
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, logger log.Logger) *Printer {
	return &Printer{w: w, logger: logger}
}

func (p *Printer) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(p.w, " > "+format+"\n", args...)

	return err
}

func (p *Printer) ConfigureFile(ctx context.Context, f *interp.ConfiguredFile) error {
	p.logger.DebugContext(ctx, "configure file",
		slog.String("path", f.Path()),
		slog.Int("bytes", len(f.Content)),
	)

	if err := p.printf("Configuring file %s: %d bytes", f.Path(), len(f.Content)); err != nil {
		return err
	}

	if !f.Install {
		return nil
	}

	return p.printf("Installing header to %s: %s header", f.InstallDir, f.Filename)
}

func (p *Printer) InstallHeaders(ctx context.Context, dir string, headers []string) error {
	p.logger.DebugContext(ctx, "install headers",
		slog.String("dir", dir),
		slog.Any("headers", headers),
	)

	return p.printf("Installing headers to %s: %d headers", dir, len(headers))
}

func (p *Printer) BuildExecutable(ctx context.Context, t *interp.BuildTarget) error {
	p.logger.DebugContext(ctx, "build executable", slog.String("name", t.Name))

	return p.printf("Building executable %s: %d sources",
		path.Join(t.InstallDir, t.Filename), len(t.Sources))
}

// BuildStaticLibrary reports installed libraries only. A library whose only
// source is empty.c is a placeholder and is not reported either.
func (p *Printer) BuildStaticLibrary(ctx context.Context, t *interp.BuildTarget) error {
	p.logger.DebugContext(ctx, "build static library", slog.String("name", t.Name))

	if !t.Install || placeholder(t) {
		return nil
	}

	return p.printf("Building static library %s: %d sources",
		path.Join(t.InstallDir, t.Filename), len(t.Sources))
}

func placeholder(t *interp.BuildTarget) bool {
	switch len(t.Sources) {
	case 0:
		return true
	case 1:
		return path.Base(t.Sources[0]) == "empty.c"
	}

	return false
}
