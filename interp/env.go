package interp

import (
	"context"
	"maps"
	"slices"
	"strings"
)

// defaultSeparator joins the values of list-like environment variables.
const defaultSeparator = ":"

// Env is a set of environment variables for commands run by the build.
type Env struct {
	objectKind

	Vars map[string]string
}

func (*Env) ObjectName() string { return "Env" }

// Environ returns the variables as sorted KEY=VALUE pairs.
func (e *Env) Environ() []string {
	out := make([]string, 0, len(e.Vars))
	for _, k := range slices.Sorted(maps.Keys(e.Vars)) {
		out = append(out, k+"="+e.Vars[k])
	}

	return out
}

func (e *Env) String() string { return "Env(" + strings.Join(e.Environ(), " ") + ")" }

func (e *Env) equal(o Object) bool { return sameContents(e, o) }

func (e *Env) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return envMethods.dispatch(ctx, in, e, e.ObjectName(), c)
}

// envUpdate parses the (name, *values, separator:) arguments shared by the
// mutating methods.
func envUpdate(c *Call) (name string, values []string, sep string, err error) {
	if name, err = c.stringArg(0); err != nil {
		return "", nil, "", err
	}

	if values, err = stringsOf("Environment values", c.Args[1:]...); err != nil {
		return "", nil, "", err
	}

	if sep, err = c.kwString("separator", defaultSeparator); err != nil {
		return "", nil, "", err
	}

	return name, values, sep, nil
}

var envMethods = methodTable[*Env]{}

func init() {
	envMethods["set"] = func(e *Env, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		name, values, sep, err := envUpdate(c)
		if err != nil {
			return nil, err
		}

		e.Vars[name] = strings.Join(values, sep)

		return None{}, nil
	}

	envMethods["prepend"] = func(e *Env, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		name, values, sep, err := envUpdate(c)
		if err != nil {
			return nil, err
		}

		if old, ok := e.Vars[name]; ok {
			values = append(values, old)
		}

		e.Vars[name] = strings.Join(values, sep)

		return None{}, nil
	}

	envMethods["append"] = func(e *Env, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		name, values, sep, err := envUpdate(c)
		if err != nil {
			return nil, err
		}

		if old, ok := e.Vars[name]; ok {
			values = append([]string{old}, values...)
		}

		e.Vars[name] = strings.Join(values, sep)

		return None{}, nil
	}

	envMethods["unset"] = func(e *Env, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		delete(e.Vars, name)

		return None{}, nil
	}

	envMethods["get"] = func(e *Env, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		if v, ok := e.Vars[name]; ok {
			return String(v), nil
		}

		if def, ok := c.Arg(1); ok {
			return def, nil
		}

		return nil, runtimeErrorf("Environment variable '%s' is not set", name)
	}

	builtins["environment"] = func(_ context.Context, _ *Interpreter, c *Call) (Value, error) {
		env := &Env{Vars: make(map[string]string)}

		v, ok := c.Arg(0)
		if !ok {
			return env, nil
		}

		d, ok := v.(Dict)
		if !ok {
			return nil, typeErrorf("Expected a dict object as the first argument, found %s", typeName(v))
		}

		for k, item := range d {
			s, ok := item.(String)
			if !ok {
				return nil, typeErrorf("Expected environment values to be strings, found %s", typeName(item))
			}

			env.Vars[k] = string(s)
		}

		return env, nil
	}
}
