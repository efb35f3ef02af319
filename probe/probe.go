// Package probe answers questions about a C or C++ toolchain by running it:
// which compiler family it is, whether it accepts a flag, whether a snippet
// compiles or links.
//
// Every probe follows the same recipe. The snippet is written into a fresh
// temporary directory, the compiler is run as
//
//	command... project-args... mode-args... extra-args... input -o output
//
// and the probe succeeds when the compiler exits with status 0. The bytes of
// the output file are kept for probes that preprocess. The temporary
// directory is always removed.
//
// Results are cached per [Prober] by a hash of the invocation and snippet.
package probe

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/gomeson/lang"
	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/platform"
)

// Predefined errors (sentinel values).
var (
	ErrUnsupportedLanguage = lang.NewError("Unsupported language")
	ErrCompilerFamily      = lang.NewError("Failed to detect compiler family")
	ErrUnderscorePrefix    = lang.NewError("Failed to find underscore prefix")
	ErrTempDir             = lang.NewError("Failed to create temporary directory")
	ErrWriteSource         = lang.NewError("Failed to write temporary source file")
	ErrRunCompiler         = lang.NewError("Failed to run compiler")
)

// Delimiter marks the start of the answer in preprocessed probe output.
const Delimiter = `"MESON_DELIMITER"`

var (
	//go:embed snippets/compiler_id.c
	compilerID string

	//go:embed snippets/underscore_prefix.c
	underscorePrefix string
)

const (
	emptyMain    = "int main() { return 0; }"
	functionMain = "int main() { void *p = (void*)(%s); return 0; }"
)

// Mode selects how far the compiler takes the snippet.
type Mode int

const (
	Link       Mode = iota // compile and link an executable
	Compile                // compile to an object file
	Preprocess             // run the preprocessor only
)

func (m Mode) args() []string {
	switch m {
	case Compile:
		return []string{"-c"}
	case Preprocess:
		return []string{"-c", "-E"}
	default:
		return nil
	}
}

// Toolchain is the compiler a probe runs.
type Toolchain struct {
	Lang        string   // "c" or "cpp"
	Command     []string // argv0, fixed arguments, and default flags
	ProjectArgs []string // project arguments for Lang
}

func (tc Toolchain) source() (string, error) {
	switch tc.Lang {
	case "c":
		return "input.c", nil
	case "cpp":
		return "input.cpp", nil
	default:
		return "", ErrUnsupportedLanguage.Wrap(errors.New(tc.Lang))
	}
}

// Result is the outcome of one compiler run.
type Result struct {
	Success bool
	Output  []byte // contents of the output file, empty if none was written
}

// Prober runs probes through a [platform.Runtime]. A Prober is safe for
// concurrent use if its Runtime is.
type Prober struct {
	rt     platform.Runtime
	logger log.Logger
	cache  sync.Map // string -> *state
}

// state memoizes one probe.
type state struct {
	once   sync.Once
	result Result
	err    error
}

// Option configures a [Prober].
type Option func(*Prober)

// WithLogger sets the logger used to trace compiler invocations.
func WithLogger(logger log.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// New returns a Prober that runs compilers through rt.
func New(rt platform.Runtime, opts ...Option) *Prober {
	p := &Prober{rt: rt}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// key hashes everything that determines a probe result.
func key(tc Toolchain, mode Mode, code string, extra []string) string {
	var buf bytes.Buffer

	for _, group := range [][]string{
		{tc.Lang, strconv.Itoa(int(mode))},
		tc.Command,
		tc.ProjectArgs,
		extra,
	} {
		buf.WriteString(strings.Join(group, "\x00"))
		buf.WriteByte('\x01')
	}

	buf.WriteString(code)

	return strconv.FormatUint(xxh3.Hash(buf.Bytes()), 36)
}

// Try runs the compiler on code. A compiler that runs and fails is not an
// error; the Result reports it.
func (p *Prober) Try(
	ctx context.Context,
	tc Toolchain,
	mode Mode,
	code string,
	extra ...string,
) (Result, error) {
	k := key(tc, mode, code, extra)

	value, cacheHit := p.cache.LoadOrStore(k, new(state))
	entry := value.(*state)

	p.logger.TraceContext(ctx, "probe cache lookup",
		slog.String("key", k),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.result, entry.err = p.run(ctx, tc, mode, code, extra)
	})

	if entry.err != nil {
		p.cache.CompareAndDelete(k, entry)

		return Result{}, entry.err
	}

	return entry.result, nil
}

func (p *Prober) run(
	ctx context.Context,
	tc Toolchain,
	mode Mode,
	code string,
	extra []string,
) (Result, error) {
	name, err := tc.source()
	if err != nil {
		return Result{}, err
	}

	if len(tc.Command) == 0 {
		return Result{}, ErrRunCompiler.Wrap(errors.New("empty compiler command"))
	}

	dir, err := p.rt.TempDir()
	if err != nil {
		return Result{}, ErrTempDir.Wrap(err)
	}

	defer func() {
		if cerr := dir.Close(); cerr != nil {
			p.logger.WarnContext(ctx, "remove probe directory",
				slog.String("path", dir.Path()),
				slog.Any("error", cerr),
			)
		}
	}()

	input := p.rt.JoinPaths(dir.Path(), name)
	output := p.rt.JoinPaths(dir.Path(), "output")

	if err := p.rt.WriteFile(input, []byte(code)); err != nil {
		return Result{}, ErrWriteSource.Wrap(err)
	}

	args := make([]string, 0, len(tc.Command)+len(tc.ProjectArgs)+len(extra)+5)
	args = append(args, tc.Command[1:]...)
	args = append(args, tc.ProjectArgs...)
	args = append(args, mode.args()...)
	args = append(args, extra...)
	args = append(args, input, "-o", output)

	out, err := p.rt.RunCommand(ctx, tc.Command[0], args...)
	if err != nil {
		return Result{}, ErrRunCompiler.Wrap(err)
	}

	p.logger.DebugContext(ctx, "probe",
		slog.String("argv0", tc.Command[0]),
		slog.Any("args", args),
		slog.Int("exit_code", out.ExitCode),
	)

	// A failed compile leaves no output file.
	artifact, _ := p.rt.ReadFile(output)

	return Result{Success: out.ExitCode == 0, Output: artifact}, nil
}

// answer returns the trimmed text after the last delimiter in preprocessed
// output.
func answer(output []byte) (string, bool) {
	i := bytes.LastIndex(output, []byte(Delimiter))
	if i < 0 {
		return "", false
	}

	return strings.TrimSpace(string(output[i+len(Delimiter):])), true
}

// CompilerID returns the compiler family: gcc, clang, emscripten, or msvc.
func (p *Prober) CompilerID(ctx context.Context, tc Toolchain) (string, error) {
	res, err := p.Try(ctx, tc, Preprocess, compilerID)
	if err != nil {
		return "", err
	}

	id, ok := answer(res.Output)
	if !ok || id == "" {
		return "", ErrCompilerFamily
	}

	return id, nil
}

// UnderscorePrefix reports whether the compiler prefixes C symbols with an
// underscore.
func (p *Prober) UnderscorePrefix(ctx context.Context, tc Toolchain) (bool, error) {
	res, err := p.Try(ctx, tc, Preprocess, underscorePrefix)
	if err != nil {
		return false, err
	}

	prefix, ok := answer(res.Output)

	switch {
	case !ok:
		return false, ErrUnderscorePrefix.Wrap(errors.New("marker not found in output"))
	case prefix == "_":
		return true, nil
	case prefix == "":
		return false, nil
	default:
		return false, ErrUnderscorePrefix.Wrap(
			fmt.Errorf("found unexpected prefix %q", prefix))
	}
}

// HasArguments reports whether the compiler accepts all of args when
// compiling.
func (p *Prober) HasArguments(ctx context.Context, tc Toolchain, args ...string) (bool, error) {
	res, err := p.Try(ctx, tc, Compile, "", args...)

	return res.Success, err
}

// SupportedArguments returns the subset of args the compiler accepts one at
// a time, in order.
func (p *Prober) SupportedArguments(
	ctx context.Context,
	tc Toolchain,
	args ...string,
) ([]string, error) {
	supported := make([]string, 0, len(args))

	for _, arg := range args {
		ok, err := p.HasArguments(ctx, tc, arg)
		if err != nil {
			return nil, err
		}

		if ok {
			supported = append(supported, arg)
		}
	}

	return supported, nil
}

// HasFunction reports whether a program taking the address of name links.
func (p *Prober) HasFunction(
	ctx context.Context,
	tc Toolchain,
	name string,
	extra ...string,
) (bool, error) {
	res, err := p.Try(ctx, tc, Link, fmt.Sprintf(functionMain, name), extra...)

	return res.Success, err
}

// HasLinkArguments reports whether an empty program links with all of args.
func (p *Prober) HasLinkArguments(ctx context.Context, tc Toolchain, args ...string) (bool, error) {
	res, err := p.Try(ctx, tc, Link, emptyMain, args...)

	return res.Success, err
}

// Compiles reports whether code compiles to an object file.
func (p *Prober) Compiles(
	ctx context.Context,
	tc Toolchain,
	code string,
	extra ...string,
) (bool, error) {
	res, err := p.Try(ctx, tc, Compile, code, extra...)

	return res.Success, err
}

// Links reports whether code compiles and links.
func (p *Prober) Links(
	ctx context.Context,
	tc Toolchain,
	code string,
	extra ...string,
) (bool, error) {
	res, err := p.Try(ctx, tc, Link, code, extra...)

	return res.Success, err
}
