package backend

import (
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/lang"
)

// Predefined errors (sentinel values).
var (
	ErrFilterCompile = lang.NewError("invalid filter expression")
	ErrFilterRun     = lang.NewError("failed to evaluate filter")
	ErrGlobPattern   = lang.NewError("invalid glob pattern")
)

// Filter narrows a [Description] to the targets a user asked about.
//
// Where is an expr-lang boolean expression evaluated once per target with
// these variables:
//
//	name, kind, filename, build_dir, full_path, install_dir  string
//	install                                                  bool
//	sources, objects, include_dirs, c_args                   []string
//
// Glob is a doublestar pattern. Targets keep only the sources it matches,
// and targets left with none are dropped.
type Filter struct {
	Where string
	Glob  string
}

func targetEnv(t *interp.BuildTarget) map[string]any {
	return map[string]any{
		"name":         t.Name,
		"kind":         t.Kind.String(),
		"filename":     t.Filename,
		"build_dir":    t.BuildDir,
		"full_path":    t.FullPath(),
		"install_dir":  t.InstallDir,
		"install":      t.Install,
		"sources":      t.Sources,
		"objects":      t.Objects,
		"include_dirs": t.IncludeDirs,
		"c_args":       t.CArgs,
	}
}

func (f Filter) compile() (*vm.Program, error) {
	if f.Where == "" {
		return nil, nil
	}

	program, err := expr.Compile(f.Where,
		expr.Env(targetEnv(&interp.BuildTarget{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, ErrFilterCompile.Wrap(err).With(slog.String("where", f.Where))
	}

	return program, nil
}

// Apply returns a copy of d holding only the matching targets. Targets are
// copied before their sources are narrowed; d is not modified.
func (f Filter) Apply(d *Description) (*Description, error) {
	program, err := f.compile()
	if err != nil {
		return nil, err
	}

	if f.Glob != "" && !doublestar.ValidatePattern(f.Glob) {
		return nil, ErrGlobPattern.With(slog.String("glob", f.Glob))
	}

	out := *d
	out.Targets = nil

	for _, t := range d.Targets {
		if program != nil {
			ok, err := expr.Run(program, targetEnv(t))
			if err != nil {
				return nil, ErrFilterRun.Wrap(err).With(slog.String("target", t.Name))
			}

			if keep, _ := ok.(bool); !keep {
				continue
			}
		}

		if f.Glob != "" {
			narrowed := *t
			narrowed.Sources = nil

			for _, src := range t.Sources {
				if doublestar.MatchUnvalidated(f.Glob, src) {
					narrowed.Sources = append(narrowed.Sources, src)
				}
			}

			if len(narrowed.Sources) == 0 {
				continue
			}

			t = &narrowed
		}

		out.Targets = append(out.Targets, t)
	}

	return &out, nil
}
