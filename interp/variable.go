package interp

import "context"

func init() {
	builtins["set_variable"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		v, ok := c.Arg(1)
		if !ok {
			v = None{}
		}

		in.vars[name] = v

		return None{}, nil
	}

	builtins["is_variable"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		_, ok := in.vars[name]

		return Boolean(ok), nil
	}

	builtins["get_variable"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		if v, ok := in.vars[name]; ok {
			return Clone(v), nil
		}

		if def, ok := c.Arg(1); ok {
			return def, nil
		}

		return nil, undefinedVariable(name)
	}
}
