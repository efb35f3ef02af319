package interp

import (
	"context"
	"log/slog"
	"strconv"
)

// ExternalProgram is the result of find_program. Path is empty when the
// program was not found.
type ExternalProgram struct {
	objectKind

	Name string
	Path string
}

func (*ExternalProgram) ObjectName() string { return "ExternalProgram" }

func (p *ExternalProgram) String() string {
	if p.Path == "" {
		return p.Name + " (not found)"
	}

	return p.Path
}

func (p *ExternalProgram) equal(o Object) bool { return sameContents(p, o) }

func (p *ExternalProgram) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return programMethods.dispatch(ctx, in, p, p.ObjectName(), c)
}

// RunResult is the captured result of run_command.
type RunResult struct {
	objectKind

	Stdout     string
	Stderr     string
	ReturnCode int
}

func (*RunResult) ObjectName() string { return "RunResult" }

func (r *RunResult) String() string {
	return "RunResult(" + strconv.Itoa(r.ReturnCode) + ")"
}

func (r *RunResult) equal(o Object) bool { return sameContents(r, o) }

func (r *RunResult) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return runResultMethods.dispatch(ctx, in, r, r.ObjectName(), c)
}

var (
	programMethods   = methodTable[*ExternalProgram]{}
	runResultMethods = methodTable[*RunResult]{}
)

func init() {
	fullPath := func(p *ExternalProgram, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		if p.Path == "" {
			return None{}, nil
		}

		return String(p.Path), nil
	}

	programMethods["found"] = func(p *ExternalProgram, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return Boolean(p.Path != ""), nil
	}
	programMethods["full_path"] = fullPath
	programMethods["path"] = fullPath

	runResultMethods["stdout"] = func(r *RunResult, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(r.Stdout), nil
	}
	runResultMethods["stderr"] = func(r *RunResult, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(r.Stderr), nil
	}
	runResultMethods["returncode"] = func(r *RunResult, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return Integer(r.ReturnCode), nil
	}

	builtins["find_program"] = func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		required, err := c.kwBool("required", false)
		if err != nil {
			return nil, err
		}

		prog := &ExternalProgram{Name: name}

		path, err := in.rt.FindProgram(ctx, name, in.currentDir)
		if err == nil {
			prog.Path = path

			return prog, nil
		}

		in.logger.DebugContext(ctx, "program not found",
			slog.String("name", name),
			slog.Any("error", err),
		)

		if required {
			return nil, runtimeErrorf("Program '%s' not found", name)
		}

		return prog, nil
	}

	builtins["run_command"] = func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		argv, err := commandLine(c.Args)
		if err != nil {
			return nil, err
		}

		if len(argv) == 0 {
			return nil, runtimeErrorf("Expected at least one argument")
		}

		check, err := c.kwBool("check", false)
		if err != nil {
			return nil, err
		}

		out, err := in.rt.RunCommand(ctx, argv[0], argv[1:]...)
		if err != nil {
			return nil, runtimeErrorf("Failed to run command: %w", err)
		}

		if check && out.ExitCode != 0 {
			return nil, runtimeErrorf("Command '%s' failed with status %d", argv[0], out.ExitCode)
		}

		return &RunResult{Stdout: out.Stdout, Stderr: out.Stderr, ReturnCode: out.ExitCode}, nil
	}
}

// commandLine flattens run_command arguments. Found programs contribute
// their path.
func commandLine(args []Value) ([]string, error) {
	flat := Flatten(args...)
	argv := make([]string, 0, len(flat))

	for _, v := range flat {
		switch v := v.(type) {
		case String:
			argv = append(argv, string(v))
		case *ExternalProgram:
			if v.Path == "" {
				return nil, runtimeErrorf("Program '%s' was not found", v.Name)
			}

			argv = append(argv, v.Path)
		case *File:
			argv = append(argv, v.Path)
		default:
			return nil, typeErrorf("Arguments to run_command must be strings, found %s", typeName(v))
		}
	}

	return argv, nil
}
