package interp

import (
	"context"
	"log/slog"
	"strings"
)

func joinFormatted(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Format(v)
	}

	return strings.Join(parts, " ")
}

func init() {
	builtins["assert"] = func(_ context.Context, _ *Interpreter, c *Call) (Value, error) {
		v, err := c.requireArg(0)
		if err != nil {
			return nil, err
		}

		cond, ok := v.(Boolean)
		if !ok {
			return nil, typeErrorf("First argument to assert must be a boolean, found %s", typeName(v))
		}

		var msg string

		if len(c.Args) > 1 {
			if msg, err = c.stringArg(1); err != nil {
				return nil, err
			}
		}

		if cond {
			return None{}, nil
		}

		if msg != "" {
			return nil, runtimeErrorf("Assertion failed: %s", strings.Trim(msg, `"`))
		}

		return nil, runtimeErrorf("Assertion failed")
	}

	builtins["message"] = func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		msg := joinFormatted(c.Args)

		in.logger.InfoContext(ctx, "message", slog.String("text", msg))
		in.rt.Print(msg)

		return None{}, nil
	}

	builtins["warning"] = func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		msg := joinFormatted(c.Args)

		in.logger.WarnContext(ctx, "warning", slog.String("text", msg))
		in.rt.Print("WARNING: " + msg)

		return None{}, nil
	}

	builtins["error"] = func(_ context.Context, _ *Interpreter, c *Call) (Value, error) {
		return nil, runtimeErrorf("%s", joinFormatted(c.Args))
	}
}
