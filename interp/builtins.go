package interp

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// builtin implements a free function.
type builtin func(ctx context.Context, in *Interpreter, c *Call) (Value, error)

// builtins is the fixed table of free functions. Entries are added by init
// functions in the files that implement them.
var builtins = map[string]builtin{}

// Builtins returns the names of all free functions in sorted order.
func Builtins() []string {
	return slices.Sorted(maps.Keys(builtins))
}

// ignored accepts any arguments and returns none. It stands in for
// functions that only matter to a build backend.
func ignored(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	in.logger.DebugContext(ctx, "ignored call", slog.String("function", c.Name))

	return None{}, nil
}

func init() {
	for _, name := range []string{"custom_target", "test", "summary", "install_data"} {
		builtins[name] = ignored
	}

	builtins["project"] = func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		v, _ := c.Arg(0)

		name, ok := v.(String)
		if !ok {
			return nil, typeErrorf("First argument to project must be a string")
		}

		version, err := c.kwString("version", defaultVersion)
		if err != nil {
			return nil, err
		}

		if len(c.Args) > 1 {
			if _, err := stringsOf("Project languages", c.Args[1:]...); err != nil {
				return nil, err
			}
		}

		in.meson.ProjectName = string(name)
		in.meson.ProjectVersion = version

		in.logger.InfoContext(ctx, "project",
			slog.String("name", in.meson.ProjectName),
			slog.String("version", in.meson.ProjectVersion),
		)

		return None{}, nil
	}

	addArgs := func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		langs, err := c.kwStrings("language")
		if err != nil {
			return nil, err
		}

		args, err := stringsOf("Project arguments", c.Args...)
		if err != nil {
			return nil, err
		}

		for _, lang := range langs {
			in.meson.ProjectArgs[lang] = append([]string(nil), args...)
		}

		return None{}, nil
	}

	builtins["add_project_arguments"] = addArgs
	builtins["add_global_arguments"] = addArgs

	builtins["add_languages"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		langs, err := stringsOf("Languages", c.Args...)
		if err != nil {
			return nil, err
		}

		if len(langs) == 0 {
			return nil, typeErrorf("First argument to add_languages must be a string")
		}

		required, err := c.kwBool("required", false)
		if err != nil {
			return nil, err
		}

		for _, lang := range langs {
			if _, err := in.compiler(lang); err != nil {
				if required {
					return nil, runtimeErrorf("No compiler found for language: %s", lang)
				}

				return Boolean(false), nil
			}
		}

		return Boolean(true), nil
	}

	builtins["import"] = func(_ context.Context, _ *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		switch name {
		case "fs":
			return &FS{}, nil
		default:
			return nil, runtimeErrorf("No module named '%s'", name)
		}
	}

	builtins["subdir"] = func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		return None{}, in.enter(ctx, name)
	}
}

// enter runs the build file of a subdirectory. The directory cursor is
// restored whether or not the script succeeds.
func (in *Interpreter) enter(ctx context.Context, name string) error {
	prevDir, prevSub := in.currentDir, in.subdir

	defer func() {
		in.currentDir, in.subdir = prevDir, prevSub
	}()

	in.currentDir = in.rt.JoinPaths(prevDir, name)
	in.subdir = strings.TrimPrefix(in.rt.JoinPaths(prevSub, name), "/")

	in.logger.DebugContext(ctx, "enter subdir", slog.String("dir", in.currentDir))

	return in.RunFile(ctx, in.rt.JoinPaths(in.currentDir, "meson.build"))
}
