package interp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/gomeson/lang"
)

func (in *Interpreter) eval(ctx context.Context, e lang.Expr) (Value, error) {
	switch e := e.(type) {
	case *lang.StringLit:
		return String(e.Value), nil

	case *lang.FStringLit:
		return String(in.interpolate(e.Value)), nil

	case *lang.IntegerLit:
		return Integer(e.Value), nil

	case *lang.BooleanLit:
		return Boolean(e.Value), nil

	case *lang.Ident:
		v, ok := in.vars[e.Name]
		if !ok {
			return nil, undefinedVariable(e.Name)
		}

		return Clone(v), nil

	case *lang.ArrayLit:
		arr := make(Array, 0, len(e.Elements))

		for _, el := range e.Elements {
			v, err := in.eval(ctx, el)
			if err != nil {
				return nil, err
			}

			arr = append(arr, v)
		}

		return arr, nil

	case *lang.DictLit:
		dict := make(Dict, len(e.Entries))

		for _, entry := range e.Entries {
			v, err := in.eval(ctx, entry.Value)
			if err != nil {
				return nil, err
			}

			dict[entry.Key] = v
		}

		return dict, nil

	case *lang.FunctionCall:
		c, err := in.evalCall(ctx, e.Name, e.Args, e.Kwargs, e.Pos)
		if err != nil {
			return nil, err
		}

		return in.callFunction(ctx, c)

	case *lang.MethodCall:
		recv, err := in.eval(ctx, e.Receiver)
		if err != nil {
			return nil, err
		}

		c, err := in.evalCall(ctx, e.Name, e.Args, e.Kwargs, e.Pos)
		if err != nil {
			return nil, err
		}

		return in.callMethod(ctx, recv, c)

	case *lang.BinaryOp:
		return in.evalBinary(ctx, e)

	case *lang.UnaryOp:
		v, err := in.eval(ctx, e.Operand)
		if err != nil {
			return nil, err
		}

		return unary(e.Op, v)

	case *lang.Subscript:
		target, err := in.eval(ctx, e.Target)
		if err != nil {
			return nil, err
		}

		index, err := in.eval(ctx, e.Index)
		if err != nil {
			return nil, err
		}

		return subscript(target, index)

	case *lang.Ternary:
		cond, err := in.eval(ctx, e.Cond)
		if err != nil {
			return nil, err
		}

		if Truthy(cond) {
			return in.eval(ctx, e.Then)
		}

		return in.eval(ctx, e.Else)
	}

	return nil, runtimeErrorf("unsupported expression %T", e)
}

// evalCall evaluates call arguments left to right, positional arguments
// first.
func (in *Interpreter) evalCall(
	ctx context.Context,
	name string,
	args []lang.Expr,
	kwargs []lang.Kwarg,
	pos lang.Position,
) (*Call, error) {
	c := &Call{
		Name:   name,
		Args:   make([]Value, 0, len(args)),
		Kwargs: make(map[string]Value, len(kwargs)),
		Pos:    pos,
	}

	for _, a := range args {
		v, err := in.eval(ctx, a)
		if err != nil {
			return nil, err
		}

		c.Args = append(c.Args, v)
	}

	for _, kw := range kwargs {
		v, err := in.eval(ctx, kw.Value)
		if err != nil {
			return nil, err
		}

		c.Kwargs[kw.Name] = v
	}

	return c, nil
}

func (in *Interpreter) evalBinary(ctx context.Context, e *lang.BinaryOp) (Value, error) {
	left, err := in.eval(ctx, e.Left)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case lang.OpAnd:
		if !Truthy(left) {
			return Boolean(false), nil
		}
	case lang.OpOr:
		if Truthy(left) {
			return Boolean(true), nil
		}
	}

	right, err := in.eval(ctx, e.Right)
	if err != nil {
		return nil, err
	}

	return in.binary(e.Op, left, right)
}

func (in *Interpreter) callFunction(ctx context.Context, c *Call) (Value, error) {
	fn, ok := builtins[c.Name]
	if !ok {
		return nil, undefinedFunction(c.Name)
	}

	in.logger.DebugContext(ctx, "call",
		slog.String("function", c.Name),
		slog.Int("args", len(c.Args)),
		slog.Int("kwargs", len(c.Kwargs)),
	)

	return fn(ctx, in, c)
}

func (in *Interpreter) callMethod(ctx context.Context, recv Value, c *Call) (Value, error) {
	in.logger.TraceContext(ctx, "method",
		slog.String("receiver", typeName(recv)),
		slog.String("method", c.Name),
	)

	switch v := recv.(type) {
	case String:
		return stringMethods.dispatch(ctx, in, v, "string", c)
	case Array:
		return arrayMethods.dispatch(ctx, in, v, "array", c)
	case Dict:
		return dictMethods.dispatch(ctx, in, v, "dict", c)
	case Integer:
		if _, ok := integerMethods[c.Name]; ok {
			return integerMethods.dispatch(ctx, in, v, "integer", c)
		}
	case Boolean:
		if _, ok := booleanMethods[c.Name]; ok {
			return booleanMethods.dispatch(ctx, in, v, "boolean", c)
		}
	case Object:
		return callObject(ctx, in, v, c)
	}

	return nil, typeErrorf("Cannot call method '%s' on %s", c.Name, typeName(recv))
}

// interpolate replaces each @name@ in s that names a variable with the
// string form of its value. Other text, including placeholders that do not
// name a variable, is kept.
func (in *Interpreter) interpolate(s string) string {
	var b strings.Builder

	for {
		i := strings.IndexByte(s, '@')
		if i < 0 {
			break
		}

		j := strings.IndexByte(s[i+1:], '@')
		if j < 0 {
			break
		}

		name := s[i+1 : i+1+j]

		if v, ok := in.vars[name]; ok && name != "" {
			b.WriteString(s[:i])
			b.WriteString(Format(v))
			s = s[i+j+2:]

			continue
		}

		b.WriteString(s[:i+1])
		s = s[i+1:]
	}

	b.WriteString(s)

	return b.String()
}
