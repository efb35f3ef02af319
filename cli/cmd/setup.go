package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardnew/gomeson/backend"
	"github.com/ardnew/gomeson/host"
	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/machine"
)

// Project selects the project to configure and how. It is shared by the
// setup and introspect commands.
type Project struct {
	BuildDir  string `arg:"" default:"build" help:"Build directory"  name:"builddir" type:"path"`
	SourceDir string `arg:"" default:"."     help:"Source directory" name:"srcdir"   type:"existingdir"`

	Buildtype string        `default:"debug"  enum:"${buildtypeEnum}" help:"Build type"`
	Prefix    string        `                                         help:"Installation prefix (default from the host)"`
	Define    []string      `                                         help:"Set a build option"                            placeholder:"KEY=VALUE" short:"D"`
	CrossFile string        `                                         help:"Machine file describing the host machine"                              type:"existingfile"`
	Timeout   time.Duration `default:"0s"                             help:"Time limit for each subprocess (0 disables)"`
}

// defines returns the option assignments in effect: -D values, then
// --buildtype and --prefix unless -D already set them.
func (p *Project) defines() (map[string]string, error) {
	out := make(map[string]string, len(p.Define)+2)

	for _, d := range p.Define {
		key, value, ok := strings.Cut(d, "=")
		if !ok {
			return nil, ErrDefine.Wrap(errors.New(d)).
				With(slog.String("define", d))
		}

		out[strings.TrimSpace(key)] = value
	}

	if _, ok := out["buildtype"]; !ok && p.Buildtype != "" {
		out["buildtype"] = p.Buildtype
	}

	if _, ok := out["prefix"]; !ok && p.Prefix != "" {
		out["prefix"] = p.Prefix
	}

	return out, nil
}

// cross reads the cross file, if any.
func (p *Project) cross(ctx context.Context) (*machine.File, error) {
	if p.CrossFile == "" {
		return nil, nil
	}

	r, err := openSource(p.CrossFile)
	if err != nil {
		return nil, ErrCrossFile.Wrap(err)
	}
	defer r.Close()

	f, err := machine.Parse(ctx, r,
		machine.WithName(p.CrossFile),
		machine.WithLogger(log.Default().Named("machine")),
	)
	if err != nil {
		return nil, ErrCrossFile.Wrap(err).With(slog.String("file", p.CrossFile))
	}

	return f, nil
}

// interpreter returns an interpreter for the project that reports to steps
// and the option assignments to configure it with.
func (p *Project) interpreter(
	ctx context.Context,
	steps interp.Steps,
) (*interp.Interpreter, *host.Runtime, map[string]string, error) {
	defines, err := p.defines()
	if err != nil {
		return nil, nil, nil, err
	}

	cross, err := p.cross(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := log.Default()

	rt := host.New(
		host.WithOutput(outputFrom(ctx)),
		host.WithLogger(logger.Named("host")),
		host.WithTimeout(p.Timeout),
	)

	in, err := interp.New(rt,
		interp.WithSourceDir(filepath.ToSlash(p.SourceDir)),
		interp.WithBuildDir(filepath.ToSlash(p.BuildDir)),
		interp.WithSteps(steps),
		interp.WithLogger(logger.Named("interp")),
		interp.WithCrossFile(cross),
	)
	if err != nil {
		return nil, nil, nil, ErrSetup.Wrap(err).With(p.attrs()...)
	}

	logger.DebugContext(ctx, "configure", append(p.attrs(),
		slog.Int("defines", len(defines)),
		slog.Bool("cross", cross != nil),
	)...)

	return in, rt, defines, nil
}

func (p *Project) attrs() []slog.Attr {
	return []slog.Attr{
		slog.String("srcdir", p.SourceDir),
		slog.String("builddir", p.BuildDir),
	}
}

// configure runs the project's build scripts, reporting to steps.
func (p *Project) configure(
	ctx context.Context,
	steps interp.Steps,
) (*interp.Interpreter, *host.Runtime, error) {
	in, rt, defines, err := p.interpreter(ctx, steps)
	if err != nil {
		return nil, nil, err
	}

	if err := in.Setup(ctx, defines); err != nil {
		return nil, nil, ErrSetup.Wrap(err).With(p.attrs()...)
	}

	return in, rt, nil
}

// Setup configures a project and reports its build steps.
type Setup struct {
	Project `embed:""`

	Format string `default:"text" enum:"text,yaml,json" help:"Summary format"              short:"o"`
	Indent int    `default:"2"                          help:"Indent width for yaml and json" short:"i"`
	Write  bool   `                                     help:"Write configured files into the build directory"`
}

// Run executes the setup command.
func (s *Setup) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)
	rec := &backend.Recorder{}
	steps := []interp.Steps{rec}

	if s.Format == "text" {
		steps = append(steps, backend.NewPrinter(out, log.Default().Named("backend")))
	}

	var writer *deferredWriter
	if s.Write {
		writer = &deferredWriter{}
		steps = append(steps, writer)
	}

	in, rt, err := s.configure(ctx, backend.Tee(steps...))
	if err != nil {
		return err
	}

	if writer != nil {
		if err := writer.flush(ctx, rt); err != nil {
			return err
		}
	}

	d := rec.Describe(in)

	switch s.Format {
	case "yaml":
		if err := d.WriteYAML(ctx, out, s.Indent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}
	case "json":
		if err := d.WriteJSON(ctx, out, s.Indent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}
	default:
		_, err = fmt.Fprintf(out,
			"Project name: %s\nProject version: %s\nBuild targets in project: %d\n",
			d.Project.Name, d.Project.Version, len(d.Targets))
	}

	return err
}

// deferredWriter queues configured files until the project configured
// successfully, then writes them all. A failed setup leaves the build
// directory untouched.
type deferredWriter struct {
	interp.Discard

	files []*interp.ConfiguredFile
}

func (w *deferredWriter) ConfigureFile(_ context.Context, f *interp.ConfiguredFile) error {
	w.files = append(w.files, f)

	return nil
}

func (w *deferredWriter) flush(ctx context.Context, rt *host.Runtime) error {
	bw := backend.NewWriter(rt, log.Default().Named("backend"))

	for _, f := range w.files {
		if err := bw.ConfigureFile(ctx, f); err != nil {
			return err
		}
	}

	return nil
}
