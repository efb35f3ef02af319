package interp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/gomeson/platform"
	"github.com/ardnew/gomeson/probe"
)

// linkerID is reported for every compiler; linkers are not detected.
const linkerID = "ld.lld"

// Compiler is the compiler for one language, as returned by
// meson.get_compiler.
type Compiler struct {
	objectKind `json:"-" yaml:"-"`

	Lang string `json:"lang" yaml:"lang"`

	platform.Compiler
}

func (*Compiler) ObjectName() string { return "Compiler" }

func (cc *Compiler) String() string {
	return cc.Lang + " compiler (" + strings.Join(cc.Argv(), " ") + ")"
}

func (cc *Compiler) equal(o Object) bool { return sameContents(cc, o) }

func (cc *Compiler) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return compilerMethods.dispatch(ctx, in, cc, cc.ObjectName(), c)
}

// toolchain returns what the prober needs to run this compiler with the
// current project arguments.
func (cc *Compiler) toolchain(in *Interpreter) probe.Toolchain {
	return probe.Toolchain{
		Lang:        cc.Lang,
		Command:     cc.Argv(),
		ProjectArgs: in.meson.ProjectArgs[cc.Lang],
	}
}

// compiler returns the compiler for lang, resolving it on first use. A cross
// file's [binaries] entry for the language takes precedence over the
// runtime's default.
func (in *Interpreter) compiler(lang string) (*Compiler, error) {
	if cc, ok := in.compilers[lang]; ok {
		return cc, nil
	}

	var pc platform.Compiler

	if v, ok := in.crossBinary(lang); ok {
		pc.Command = v
	} else {
		var err error
		if pc, err = in.rt.Compiler(lang); err != nil {
			return nil, runtimeErrorf("Failed to get %s compiler: %w", lang, err)
		}
	}

	if len(pc.Command) == 0 {
		return nil, runtimeErrorf("Failed to get %s compiler: empty command", lang)
	}

	in.logger.Debug("resolved compiler",
		slog.String("lang", lang),
		slog.Any("command", pc.Argv()),
	)

	cc := &Compiler{Lang: lang, Compiler: pc}
	in.compilers[lang] = cc

	return cc, nil
}

func (in *Interpreter) crossBinary(lang string) ([]string, bool) {
	if in.cross == nil {
		return nil, false
	}

	v, ok := in.cross.Get("binaries", lang)
	if !ok {
		return nil, false
	}

	return v.Strings(), true
}

// probeErr reports a probe failure as a script error.
func probeErr(err error) error {
	return runtimeErrorf("%w", err)
}

// extraArgs returns the args keyword argument of compiles and links.
func extraArgs(c *Call) ([]string, error) {
	return c.kwStrings("args")
}

var compilerMethods = methodTable[*Compiler]{}

func init() {
	compilerMethods["get_id"] = func(cc *Compiler, ctx context.Context, in *Interpreter, _ *Call) (Value, error) {
		id, err := in.prober.CompilerID(ctx, cc.toolchain(in))
		if err != nil {
			return nil, probeErr(err)
		}

		return String(id), nil
	}

	compilerMethods["get_linker_id"] = func(*Compiler, context.Context, *Interpreter, *Call) (Value, error) {
		return String(linkerID), nil
	}

	compilerMethods["cmd_array"] = func(cc *Compiler, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		argv := cc.Argv()

		out := make(Array, len(argv))
		for i, a := range argv {
			out[i] = String(a)
		}

		return out, nil
	}

	compilerMethods["has_argument"] = func(cc *Compiler, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		arg, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		required, err := c.kwBool("required", false)
		if err != nil {
			return nil, err
		}

		ok, err := in.prober.HasArguments(ctx, cc.toolchain(in), arg)
		if err != nil {
			return nil, probeErr(err)
		}

		if !ok && required {
			return nil, runtimeErrorf("Compiler does not support argument: %s", arg)
		}

		return Boolean(ok), nil
	}

	compilerMethods["get_supported_arguments"] = func(cc *Compiler, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		args, err := stringsOf("Expected arguments", c.Args...)
		if err != nil {
			return nil, err
		}

		supported, err := in.prober.SupportedArguments(ctx, cc.toolchain(in), args...)
		if err != nil {
			return nil, probeErr(err)
		}

		out := make(Array, len(supported))
		for i, a := range supported {
			out[i] = String(a)
		}

		return out, nil
	}

	compilerMethods["has_function"] = func(cc *Compiler, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		extra, err := extraArgs(c)
		if err != nil {
			return nil, err
		}

		ok, err := in.prober.HasFunction(ctx, cc.toolchain(in), name, extra...)
		if err != nil {
			return nil, probeErr(err)
		}

		return Boolean(ok), nil
	}

	compilerMethods["has_link_argument"] = func(cc *Compiler, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		arg, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		ok, err := in.prober.HasLinkArguments(ctx, cc.toolchain(in), arg)
		if err != nil {
			return nil, probeErr(err)
		}

		return Boolean(ok), nil
	}

	compilerMethods["has_multi_link_arguments"] = func(cc *Compiler, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		args, err := stringsOf("Expected arguments", c.Args...)
		if err != nil {
			return nil, err
		}

		ok, err := in.prober.HasLinkArguments(ctx, cc.toolchain(in), args...)
		if err != nil {
			return nil, probeErr(err)
		}

		return Boolean(ok), nil
	}

	compilerMethods["symbols_have_underscore_prefix"] = func(cc *Compiler, ctx context.Context, in *Interpreter, _ *Call) (Value, error) {
		ok, err := in.prober.UnderscorePrefix(ctx, cc.toolchain(in))
		if err != nil {
			return nil, probeErr(err)
		}

		return Boolean(ok), nil
	}

	compilerMethods["compiles"] = func(cc *Compiler, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		code, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		extra, err := extraArgs(c)
		if err != nil {
			return nil, err
		}

		ok, err := in.prober.Compiles(ctx, cc.toolchain(in), code, extra...)
		if err != nil {
			return nil, probeErr(err)
		}

		return Boolean(ok), nil
	}

	compilerMethods["links"] = func(cc *Compiler, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		code, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		extra, err := extraArgs(c)
		if err != nil {
			return nil, err
		}

		ok, err := in.prober.Links(ctx, cc.toolchain(in), code, extra...)
		if err != nil {
			return nil, probeErr(err)
		}

		return Boolean(ok), nil
	}
}
