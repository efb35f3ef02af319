package interp

import (
	"context"
	"reflect"

	"github.com/ardnew/gomeson/lang"
)

// Object is a value with a fixed, per-kind method table. Objects are shared
// handles: every variable holding an object observes its mutations.
type Object interface {
	Value

	// ObjectName names the object kind, e.g. "ConfigData".
	ObjectName() string

	// String is the result of the to_string method.
	String() string

	call(ctx context.Context, in *Interpreter, c *Call) (Value, error)
	equal(other Object) bool
}

// objectKind is embedded by every object to satisfy the Value interface.
type objectKind struct{}

func (objectKind) Type() Type { return TypeObject }
func (objectKind) value()     {}

// sameContents reports whether b is the same kind as a with equal contents.
func sameContents[T Object](a T, b Object) bool {
	o, ok := b.(T)

	return ok && reflect.DeepEqual(a, o)
}

// method implements one entry of a method table for receivers of type T.
type method[T any] func(recv T, ctx context.Context, in *Interpreter, c *Call) (Value, error)

// methodTable maps method names to implementations. Tables are populated in
// init functions since methods refer back to the interpreter.
type methodTable[T any] map[string]method[T]

// dispatch calls the named method, or reports an unknown method for the
// receiver kind.
func (t methodTable[T]) dispatch(
	ctx context.Context,
	in *Interpreter,
	recv T,
	kind string,
	c *Call,
) (Value, error) {
	m, ok := t[c.Name]
	if !ok {
		return nil, runtimeErrorf("Unknown method '%s' for %s", c.Name, kind)
	}

	return m(recv, ctx, in, c)
}

// callObject dispatches a method on an object. to_string is available on
// every kind.
func callObject(
	ctx context.Context,
	in *Interpreter,
	obj Object,
	c *Call,
) (Value, error) {
	if c.Name == "to_string" {
		return String(obj.String()), nil
	}

	return obj.call(ctx, in, c)
}

// Call holds the evaluated arguments of a function or method call.
type Call struct {
	Name   string
	Args   []Value
	Kwargs map[string]Value
	Pos    lang.Position
}

// Arg returns the positional argument at index i.
func (c *Call) Arg(i int) (Value, bool) {
	if i < 0 || i >= len(c.Args) {
		return nil, false
	}

	return c.Args[i], true
}

// Kwarg returns the named argument.
func (c *Call) Kwarg(name string) (Value, bool) {
	v, ok := c.Kwargs[name]

	return v, ok
}

var ordinals = [...]string{"First", "Second", "Third", "Fourth"}

func ordinal(i int) string {
	if i < len(ordinals) {
		return ordinals[i]
	}

	return "Argument"
}

// stringArg requires a String positional argument at index i.
func (c *Call) stringArg(i int) (string, error) {
	v, ok := c.Arg(i)
	if !ok {
		return "", typeErrorf("%s argument to %s must be a string", ordinal(i), c.Name)
	}

	s, ok := v.(String)
	if !ok {
		return "", typeErrorf(
			"%s argument to %s must be a string, found %s",
			ordinal(i), c.Name, typeName(v),
		)
	}

	return string(s), nil
}

// intArg returns the Integer positional argument at index i, or def when it
// is absent.
func (c *Call) intArg(i int, def int64) (int64, error) {
	v, ok := c.Arg(i)
	if !ok {
		return def, nil
	}

	n, ok := v.(Integer)
	if !ok {
		return 0, typeErrorf(
			"%s argument to %s must be an integer, found %s",
			ordinal(i), c.Name, typeName(v),
		)
	}

	return int64(n), nil
}

// requireArg returns the positional argument at index i or a TypeError.
func (c *Call) requireArg(i int) (Value, error) {
	v, ok := c.Arg(i)
	if !ok {
		return nil, typeErrorf("%s argument to %s is required", ordinal(i), c.Name)
	}

	return v, nil
}

// kwString returns a String keyword argument, or def when it is absent or
// none.
func (c *Call) kwString(name, def string) (string, error) {
	v, ok := c.Kwarg(name)
	if !ok {
		return def, nil
	}

	switch v := v.(type) {
	case String:
		return string(v), nil
	case None:
		return def, nil
	default:
		return "", typeErrorf(
			"Expected '%s' keyword argument to be a string, found %s",
			name, typeName(v),
		)
	}
}

// kwBool returns a Boolean keyword argument, or def when it is absent.
func (c *Call) kwBool(name string, def bool) (bool, error) {
	v, ok := c.Kwarg(name)
	if !ok {
		return def, nil
	}

	b, ok := v.(Boolean)
	if !ok {
		return false, typeErrorf(
			"Expected '%s' keyword argument to be a boolean, found %s",
			name, typeName(v),
		)
	}

	return bool(b), nil
}

// kwStrings returns a keyword argument holding a string or (nested) array of
// strings.
func (c *Call) kwStrings(name string) ([]string, error) {
	v, ok := c.Kwarg(name)
	if !ok {
		return nil, nil
	}

	return stringsOf("Elements of '"+name+"'", v)
}
