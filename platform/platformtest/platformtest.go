// Package platformtest provides an in-memory [platform.Runtime] for tests.
package platformtest

import (
	"context"
	"errors"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ardnew/gomeson/platform"
)

// Handler scripts a child process. It receives the full argv and the
// runtime, so it can write output files.
type Handler func(rt *Runtime, argv []string) platform.CommandOutput

// Runtime is an in-memory [platform.Runtime]. Files live in a map keyed by
// slash-separated path; directories exist implicitly as prefixes of file
// paths or explicitly in Dirs.
type Runtime struct {
	mu sync.Mutex

	Files     map[string][]byte
	Dirs      map[string]bool
	Env       map[string]string
	Programs  map[string]string // name -> absolute path
	Compilers map[string]platform.Compiler
	Build     platform.Machine
	Host      platform.Machine
	Prefix    string

	// Run handles RunCommand. A nil Run fails every command.
	Run Handler

	Printed  []string
	Commands [][]string
	tempDirs int
	Removed  []string
}

// New returns a Runtime for an x86_64 Linux machine with a c and cpp
// compiler named cc and c++ and prefix /usr/local.
func New() *Runtime {
	m := platform.Machine{
		System: "linux", CPUFamily: "x86_64", CPU: "x86_64", Endian: "little",
	}

	return &Runtime{
		Files:    make(map[string][]byte),
		Dirs:     make(map[string]bool),
		Env:      make(map[string]string),
		Programs: make(map[string]string),
		Compilers: map[string]platform.Compiler{
			"c":   {Command: []string{"cc"}},
			"cpp": {Command: []string{"c++"}},
		},
		Build:  m,
		Host:   m,
		Prefix: "/usr/local",
	}
}

// AddFile stores a file.
func (r *Runtime) AddFile(name, content string) *Runtime {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Files[path.Clean(name)] = []byte(content)

	return r
}

func (r *Runtime) Print(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Printed = append(r.Printed, msg)
}

func (r *Runtime) Getenv(key string) (string, bool) {
	v, ok := r.Env[key]

	return v, ok
}

func (r *Runtime) BuildMachine() (platform.Machine, error) { return r.Build, nil }
func (r *Runtime) HostMachine() (platform.Machine, error)  { return r.Host, nil }
func (r *Runtime) DefaultPrefix() (string, error)          { return r.Prefix, nil }

func (r *Runtime) IsFile(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.Files[path.Clean(name)]

	return ok, nil
}

func (r *Runtime) IsDir(name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.isDir(path.Clean(name)), nil
}

func (r *Runtime) isDir(name string) bool {
	if r.Dirs[name] {
		return true
	}

	for f := range r.Files {
		if strings.HasPrefix(f, name+"/") {
			return true
		}
	}

	return false
}

func (r *Runtime) Exists(name string) (bool, error) {
	if ok, _ := r.IsFile(name); ok {
		return true, nil
	}

	return r.IsDir(name)
}

func (r *Runtime) ReadFile(name string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.Files[path.Clean(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	return slices.Clone(data), nil
}

func (r *Runtime) WriteFile(name string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Files[path.Clean(name)] = slices.Clone(data)

	return nil
}

type tempDir struct {
	rt   *Runtime
	path string
}

func (d tempDir) Path() string { return d.path }

func (d tempDir) Close() error {
	d.rt.mu.Lock()
	defer d.rt.mu.Unlock()

	for f := range d.rt.Files {
		if strings.HasPrefix(f, d.path+"/") {
			delete(d.rt.Files, f)
		}
	}

	delete(d.rt.Dirs, d.path)
	d.rt.Removed = append(d.rt.Removed, d.path)

	return nil
}

func (r *Runtime) TempDir() (platform.TempDir, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tempDirs++
	p := "/tmp/probe" + strconv.Itoa(r.tempDirs)
	r.Dirs[p] = true

	return tempDir{rt: r, path: p}, nil
}

// TempDirs returns the number of temporary directories created.
func (r *Runtime) TempDirs() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.tempDirs
}

func (r *Runtime) Compiler(lang string) (platform.Compiler, error) {
	c, ok := r.Compilers[lang]
	if !ok {
		return platform.Compiler{}, platform.ErrUnsupportedLanguage.Wrap(errors.New(lang))
	}

	return c, nil
}

func (r *Runtime) FindProgram(_ context.Context, name, _ string) (string, error) {
	p, ok := r.Programs[name]
	if !ok {
		return "", platform.ErrProgramNotFound.Wrap(errors.New(name))
	}

	return p, nil
}

func (r *Runtime) RunCommand(
	ctx context.Context,
	argv0 string,
	args ...string,
) (platform.CommandOutput, error) {
	if err := ctx.Err(); err != nil {
		return platform.CommandOutput{}, err
	}

	argv := append([]string{argv0}, args...)

	r.mu.Lock()
	r.Commands = append(r.Commands, argv)
	run := r.Run
	r.mu.Unlock()

	if run == nil {
		return platform.CommandOutput{}, platform.ErrProgramNotFound.Wrap(errors.New(argv0))
	}

	return run(r, argv), nil
}

func (r *Runtime) JoinPaths(parts ...string) string { return platform.JoinPaths(parts...) }

func (r *Runtime) Glob(dir, pattern string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := strings.TrimSuffix(path.Clean(dir), "/") + "/"
	if prefix == "./" {
		prefix = ""
	}

	var out []string

	for _, f := range slices.Sorted(maps.Keys(r.Files)) {
		rel, ok := strings.CutPrefix(f, prefix)
		if !ok {
			continue
		}

		match, err := doublestar.Match(pattern, rel)
		if err != nil {
			return nil, err
		}

		if match {
			out = append(out, rel)
		}
	}

	return out, nil
}

// Output returns the path following -o in argv.
func Output(argv []string) string {
	for i, a := range argv {
		if a == "-o" && i+1 < len(argv) {
			return argv[i+1]
		}
	}

	return ""
}

// Compiler returns a Handler that accepts every invocation except those
// containing a rejected argument. Preprocessing writes preprocessed to the
// output file; compiling and linking write a placeholder object.
func Compiler(preprocessed string, rejected ...string) Handler {
	return func(rt *Runtime, argv []string) platform.CommandOutput {
		for _, a := range argv {
			if slices.Contains(rejected, a) {
				return platform.CommandOutput{
					Stderr:   "error: unrecognized command-line option '" + a + "'",
					ExitCode: 1,
				}
			}
		}

		out := Output(argv)
		if out == "" {
			return platform.CommandOutput{}
		}

		if slices.Contains(argv, "-E") {
			_ = rt.WriteFile(out, []byte(preprocessed))
		} else {
			_ = rt.WriteFile(out, []byte("\x7fELF"))
		}

		return platform.CommandOutput{}
	}
}
