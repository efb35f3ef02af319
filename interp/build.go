package interp

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// Setup configures the project in the source directory:
//
//  1. declare the builtin options
//  2. set prefix from the runtime
//  3. run meson_options.txt, if present
//  4. apply the cross file's [built-in options], then defines
//  5. run meson.build
//
// Defines map option names to their command-line form.
func (in *Interpreter) Setup(ctx context.Context, defines map[string]string) error {
	in.logger.InfoContext(ctx, "setup",
		slog.String("source_dir", in.sourceDir),
		slog.String("build_dir", in.buildDir),
		slog.Bool("cross", in.cross != nil),
	)

	if err := in.RunString(ctx, "builtin_options.txt", BuiltinOptions); err != nil {
		return err
	}

	prefix, err := in.rt.DefaultPrefix()
	if err != nil {
		return runtimeErrorf("Failed to get default prefix: %w", err)
	}

	if prefix != "" {
		in.options["prefix"].Value = String(prefix)
	}

	optionsFile := in.rt.JoinPaths(in.sourceDir, "meson_options.txt")

	ok, err := in.rt.IsFile(optionsFile)
	if err != nil {
		return runtimeErrorf("Failed to check %s: %w", optionsFile, err)
	}

	if ok {
		if err := in.RunFile(ctx, optionsFile); err != nil {
			return err
		}
	}

	if in.cross != nil {
		if section, ok := in.cross.Section("built-in options"); ok {
			for _, key := range section.Keys() {
				v, _ := section.Get(key)
				if err := in.SetOption(key, v.String()); err != nil {
					return err
				}
			}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(defines)) {
		if err := in.SetOption(name, defines[name]); err != nil {
			return err
		}
	}

	return in.RunFile(ctx, in.rt.JoinPaths(in.sourceDir, "meson.build"))
}
