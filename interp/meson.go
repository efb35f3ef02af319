package interp

import (
	"context"

	"github.com/ardnew/gomeson/machine"
)

const (
	// MesonVersion is the language version reported by meson.version().
	MesonVersion = "1.3.0"

	defaultVersion = "0.0.0"
)

// Meson is the project metadata singleton bound to the variable meson.
type Meson struct {
	objectKind `json:"-" yaml:"-"`

	SourceDir      string              `json:"source_dir"             yaml:"source_dir"`
	BuildDir       string              `json:"build_dir"              yaml:"build_dir"`
	ProjectName    string              `json:"project_name"           yaml:"project_name"`
	ProjectVersion string              `json:"project_version"        yaml:"project_version"`
	ProjectArgs    map[string][]string `json:"project_args,omitempty" yaml:"project_args,omitempty"`
	Cross          bool                `json:"cross"                  yaml:"cross"`
}

func (*Meson) ObjectName() string { return "Meson" }
func (*Meson) String() string     { return "meson" }

func (m *Meson) equal(o Object) bool { return sameContents(m, o) }

func (m *Meson) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return mesonMethods.dispatch(ctx, in, m, m.ObjectName(), c)
}

var mesonMethods = methodTable[*Meson]{}

func init() {
	mesonMethods["version"] = func(*Meson, context.Context, *Interpreter, *Call) (Value, error) {
		return &Version{Value: MesonVersion}, nil
	}

	mesonMethods["project_name"] = func(m *Meson, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(m.ProjectName), nil
	}

	mesonMethods["project_version"] = func(m *Meson, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(m.ProjectVersion), nil
	}

	mesonMethods["current_source_dir"] = func(_ *Meson, _ context.Context, in *Interpreter, _ *Call) (Value, error) {
		return String(in.currentDir), nil
	}

	mesonMethods["current_build_dir"] = func(_ *Meson, _ context.Context, in *Interpreter, _ *Call) (Value, error) {
		return String(in.currentBuildDir()), nil
	}

	mesonMethods["source_root"] = func(m *Meson, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(m.SourceDir), nil
	}

	mesonMethods["build_root"] = func(m *Meson, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(m.BuildDir), nil
	}

	mesonMethods["is_subproject"] = func(*Meson, context.Context, *Interpreter, *Call) (Value, error) {
		return Boolean(false), nil
	}

	mesonMethods["is_cross_build"] = func(m *Meson, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return Boolean(m.Cross), nil
	}

	mesonMethods["get_compiler"] = func(_ *Meson, _ context.Context, in *Interpreter, c *Call) (Value, error) {
		lang, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		cc, err := in.compiler(lang)
		if err != nil {
			return nil, err
		}

		return cc, nil
	}

	crossProperty := func(_ *Meson, _ context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		if in.cross != nil {
			if v, ok := in.cross.Get("properties", name); ok {
				return fromMachine(v), nil
			}
		}

		if def, ok := c.Arg(1); ok {
			return def, nil
		}

		return nil, runtimeErrorf("Unknown cross property: %s", name)
	}

	mesonMethods["get_cross_property"] = crossProperty
	mesonMethods["get_external_property"] = crossProperty

	mesonMethods["add_install_script"] = func(_ *Meson, ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		return ignored(ctx, in, c)
	}
}

// fromMachine converts a machine file value to a script value.
func fromMachine(v machine.Value) Value {
	switch v.Kind {
	case machine.KindInteger:
		return Integer(v.Int)
	case machine.KindBoolean:
		return Boolean(v.Bool)
	case machine.KindArray:
		out := make(Array, len(v.Array))
		for i, item := range v.Array {
			out[i] = fromMachine(item)
		}

		return out
	default:
		return String(v.Str)
	}
}
