// Package host implements [platform.Runtime] for the machine the process
// runs on: the real filesystem, environment, and child processes.
package host

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ardnew/mung"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hairyhenderson/go-which"
	sysinfo "github.com/shirou/gopsutil/v4/host"

	"github.com/ardnew/gomeson/lang"
	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/platform"
)

// Predefined errors (sentinel values).
var (
	ErrDetectMachine = lang.NewError("failed to detect machine")
	ErrRunCommand    = lang.NewError("failed to run command")
)

// Runtime is the [platform.Runtime] of the running process.
type Runtime struct {
	out     io.Writer
	logger  log.Logger
	timeout time.Duration
	paths   []string // searched before PATH

	machine func() (platform.Machine, error)
}

// Option configures a [Runtime].
type Option func(*Runtime)

// WithOutput sets where [Runtime.Print] writes. The default is stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger sets the logger used to trace child processes.
func WithLogger(logger log.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithTimeout bounds every child process. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = d
	}
}

// WithSearchPath adds directories searched for programs before PATH. Child
// processes see them prepended to their PATH.
func WithSearchPath(dirs ...string) Option {
	return func(r *Runtime) {
		r.paths = append(r.paths, dirs...)
	}
}

// New returns the runtime of the running process.
func New(opts ...Option) *Runtime {
	r := &Runtime{out: os.Stdout}

	for _, opt := range opts {
		opt(r)
	}

	r.machine = sync.OnceValues(detect)

	return r
}

func (r *Runtime) Print(msg string) {
	_, _ = fmt.Fprintln(r.out, msg)
}

func (r *Runtime) Getenv(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (r *Runtime) BuildMachine() (platform.Machine, error) { return r.machine() }

// HostMachine reports the build machine. Cross builds override it from a
// machine file.
func (r *Runtime) HostMachine() (platform.Machine, error) { return r.machine() }

func (r *Runtime) DefaultPrefix() (string, error) {
	if runtime.GOOS == "windows" {
		return "c:/", nil
	}

	return "/usr/local", nil
}

func (r *Runtime) IsFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, notExist(err)
	}

	return info.Mode().IsRegular(), nil
}

func (r *Runtime) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, notExist(err)
	}

	return info.IsDir(), nil
}

func (r *Runtime) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		return false, notExist(err)
	}

	return true, nil
}

// notExist swallows the errors that mean the path is simply absent.
func notExist(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return nil
	}

	return err
}

func (r *Runtime) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path, creating parent directories as needed.
func (r *Runtime) WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

type tempDir string

func (d tempDir) Path() string { return filepath.ToSlash(string(d)) }
func (d tempDir) Close() error { return os.RemoveAll(string(d)) }

func (r *Runtime) TempDir() (platform.TempDir, error) {
	dir, err := os.MkdirTemp("", "gomeson-")
	if err != nil {
		return nil, err
	}

	return tempDir(dir), nil
}

// compilerEnv names the environment variables that select the compiler and
// its default flags for each language.
var compilerEnv = map[string]struct{ cmd, flags, fallback string }{
	"c":   {"CC", "CFLAGS", "cc"},
	"cpp": {"CXX", "CXXFLAGS", "c++"},
}

// Compiler returns the command named by CC (or CXX) split on whitespace, so
// wrappers like "ccache gcc" work, followed by CFLAGS (or CXXFLAGS).
func (r *Runtime) Compiler(lang string) (platform.Compiler, error) {
	env, ok := compilerEnv[lang]
	if !ok {
		return platform.Compiler{}, platform.ErrUnsupportedLanguage.
			Wrap(errors.New(lang)).
			With(slog.String("lang", lang))
	}

	command := strings.Fields(os.Getenv(env.cmd))
	if len(command) == 0 {
		command = []string{env.fallback}
	}

	return platform.Compiler{
		Command: command,
		Flags:   strings.Fields(os.Getenv(env.flags)),
	}, nil
}

// searchPath returns PATH with the extra search directories in front.
func (r *Runtime) searchPath() string {
	return mung.Make(
		mung.WithSubjectItems(os.Getenv("PATH")),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(r.paths...),
	).String()
}

// FindProgram resolves name. A name containing a separator is resolved
// against cwd; otherwise the extra search directories are tried before PATH.
func (r *Runtime) FindProgram(ctx context.Context, name, cwd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if strings.ContainsAny(name, `/\`) {
		p := name
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}

		if abs, err := filepath.Abs(p); err == nil && executable(abs) {
			return filepath.ToSlash(abs), nil
		}

		return "", platform.ErrProgramNotFound.Wrap(errors.New(name))
	}

	for _, dir := range r.paths {
		if p := filepath.Join(dir, name); executable(p) {
			return filepath.ToSlash(p), nil
		}
	}

	if p := which.Which(name); p != "" {
		return filepath.ToSlash(p), nil
	}

	return "", platform.ErrProgramNotFound.Wrap(errors.New(name))
}

func executable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}

// RunCommand runs argv0 with args and captures its output. A non-zero exit
// is reported in the result, not as an error; failing to start is an error.
func (r *Runtime) RunCommand(
	ctx context.Context,
	argv0 string,
	args ...string,
) (platform.CommandOutput, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, argv0, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if len(r.paths) > 0 {
		cmd.Env = append(os.Environ(), "PATH="+r.searchPath())
	}

	start := time.Now()
	err := cmd.Run()

	out := platform.CommandOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exit *exec.ExitError

	switch {
	case err == nil:
	case errors.As(err, &exit) && ctx.Err() == nil:
		out.ExitCode = exit.ExitCode()
	default:
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}

		return out, ErrRunCommand.Wrap(err).With(slog.String("argv0", argv0))
	}

	r.logger.TraceContext(ctx, "run command",
		slog.Any("argv", append([]string{argv0}, args...)),
		slog.Int("exit_code", out.ExitCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

func (r *Runtime) JoinPaths(parts ...string) string { return platform.JoinPaths(parts...) }

// Glob matches a doublestar pattern against the regular files under dir.
func (r *Runtime) Glob(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	slices.Sort(matches)

	return matches, nil
}

func detect() (platform.Machine, error) {
	info, err := sysinfo.Info()
	if err != nil {
		return platform.Machine{}, ErrDetectMachine.Wrap(err)
	}

	cpu := info.KernelArch
	if cpu == "" {
		cpu = runtime.GOARCH
	}

	system := info.OS
	if system == "" {
		system = runtime.GOOS
	}

	return platform.Machine{
		System:    system,
		CPUFamily: CPUFamily(cpu),
		CPU:       cpu,
		Endian:    endian(),
	}, nil
}

// CPUFamily normalizes a kernel or Go architecture name to a CPU family.
func CPUFamily(arch string) string {
	arch = strings.ToLower(arch)

	switch arch {
	case "x86_64", "amd64", "x64":
		return "x86_64"
	case "i386", "i486", "i586", "i686", "x86", "386":
		return "x86"
	case "aarch64", "arm64", "aarch64_be":
		return "aarch64"
	case "ppc64", "ppc64le":
		return "ppc64"
	case "ppc", "powerpc":
		return "ppc"
	case "mips64", "mips64le":
		return "mips64"
	case "mips", "mipsle":
		return "mips"
	case "s390x":
		return "s390x"
	case "loong64", "loongarch64":
		return "loongarch64"
	}

	if strings.HasPrefix(arch, "arm") {
		return "arm"
	}

	return arch
}

func endian() string {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return "little"
	}

	return "big"
}
