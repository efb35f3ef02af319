package interp

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/gomeson/lang"
	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/machine"
	"github.com/ardnew/gomeson/platform"
	"github.com/ardnew/gomeson/probe"
)

// Interpreter evaluates build scripts. It holds a single flat variable
// scope, the option table, the directory cursor used to resolve relative
// paths, and the project metadata shared by every script it runs.
//
// An Interpreter is not safe for concurrent use.
type Interpreter struct {
	rt     platform.Runtime
	steps  Steps
	logger log.Logger
	cross  *machine.File
	prober *probe.Prober

	vars    map[string]Value
	options map[string]*BuildOption
	order   []string // option names in declaration order

	meson     *Meson
	build     *Machine
	host      *Machine
	compilers map[string]*Compiler

	sourceDir  string
	buildDir   string
	currentDir string // directory of the running script
	subdir     string // currentDir relative to sourceDir
	file       string // path of the running script, for diagnostics
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithSteps sets the receiver of build steps. The default discards them.
func WithSteps(steps Steps) Option {
	return func(in *Interpreter) {
		if steps != nil {
			in.steps = steps
		}
	}
}

// WithLogger sets the logger used to trace evaluation.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithCrossFile sets the machine file describing a cross build.
func WithCrossFile(f *machine.File) Option {
	return func(in *Interpreter) {
		in.cross = f
	}
}

// WithSourceDir sets the project source root.
func WithSourceDir(dir string) Option {
	return func(in *Interpreter) {
		in.sourceDir = dir
	}
}

// WithBuildDir sets the build directory.
func WithBuildDir(dir string) Option {
	return func(in *Interpreter) {
		in.buildDir = dir
	}
}

// WithProber sets the compiler prober. The default probes through the
// interpreter's runtime.
func WithProber(p *probe.Prober) Option {
	return func(in *Interpreter) {
		in.prober = p
	}
}

// New returns an interpreter seeded with the builtin variables meson,
// build_machine, host_machine, target_machine, and fs.
func New(rt platform.Runtime, opts ...Option) (*Interpreter, error) {
	in := &Interpreter{
		rt:        rt,
		steps:     Discard{},
		vars:      make(map[string]Value),
		options:   make(map[string]*BuildOption),
		compilers: make(map[string]*Compiler),
		sourceDir: ".",
		buildDir:  "./build",
	}

	for _, opt := range opts {
		opt(in)
	}

	if in.prober == nil {
		in.prober = probe.New(rt, probe.WithLogger(in.logger))
	}

	in.currentDir = in.sourceDir
	in.meson = &Meson{
		SourceDir:      in.sourceDir,
		BuildDir:       in.buildDir,
		ProjectVersion: defaultVersion,
		ProjectArgs:    make(map[string][]string),
		Cross:          in.cross != nil,
	}

	var err error

	if in.build, err = buildMachine(in); err != nil {
		return nil, err
	}

	if in.host, err = hostMachine(in); err != nil {
		return nil, err
	}

	in.vars["meson"] = in.meson
	in.vars["build_machine"] = in.build
	in.vars["host_machine"] = in.host
	in.vars["target_machine"] = in.host
	in.vars["fs"] = &FS{}

	return in, nil
}

// Meson returns the project metadata.
func (in *Interpreter) Meson() *Meson { return in.meson }

// CurrentDir returns the directory cursor used to resolve relative paths.
func (in *Interpreter) CurrentDir() string { return in.currentDir }

// Get returns a copy of the named variable.
func (in *Interpreter) Get(name string) (Value, bool) {
	v, ok := in.vars[name]
	if !ok {
		return nil, false
	}

	return Clone(v), true
}

// Set assigns a variable.
func (in *Interpreter) Set(name string, v Value) {
	in.vars[name] = v
}

// Variables returns the names of all variables in sorted order.
func (in *Interpreter) Variables() []string {
	return slices.Sorted(maps.Keys(in.vars))
}

// Run executes a parsed script.
func (in *Interpreter) Run(ctx context.Context, ast *lang.AST) error {
	prev := in.file
	in.file = ast.Name()

	defer func() { in.file = prev }()

	in.logger.DebugContext(ctx, "run script",
		slog.String("file", in.file),
		slog.Int("statements", len(ast.Statements)),
	)

	_, err := in.execBlock(ctx, ast.Statements)

	return err
}

// RunString parses and executes source. The name is used in diagnostics.
func (in *Interpreter) RunString(ctx context.Context, name, source string) error {
	ast, err := lang.ParseString(ctx, source,
		lang.WithName(name), lang.WithLogger(in.logger))
	if err != nil {
		return err
	}

	return in.Run(ctx, ast)
}

// RunFile reads, parses, and executes the script at path.
func (in *Interpreter) RunFile(ctx context.Context, path string) error {
	data, err := in.rt.ReadFile(path)
	if err != nil {
		return runtimeErrorf("Failed to read %s: %w", path, err)
	}

	ast, err := lang.ParseReader(ctx, bytes.NewReader(data),
		lang.WithName(path), lang.WithLogger(in.logger))
	if err != nil {
		return err
	}

	return in.Run(ctx, ast)
}

// Exec runs source and returns the value of its final statement when that
// statement is an expression, or none otherwise.
func (in *Interpreter) Exec(ctx context.Context, source string) (Value, error) {
	ast, err := lang.ParseString(ctx, source, lang.WithLogger(in.logger))
	if err != nil {
		return nil, err
	}

	stmts := ast.Statements
	if len(stmts) == 0 {
		return None{}, nil
	}

	last, ok := stmts[len(stmts)-1].(*lang.ExprStmt)
	if !ok {
		_, err = in.execBlock(ctx, stmts)

		return None{}, err
	}

	f, err := in.execBlock(ctx, stmts[:len(stmts)-1])
	if err != nil || f != proceed {
		return None{}, err
	}

	v, err := in.eval(ctx, last.Expr)
	if err != nil {
		return nil, locate(err, in.file, last.Position())
	}

	return v, nil
}
