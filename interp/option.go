package interp

//go:generate go tool stringer --linecomment --type OptionType --output optiontype_string.go

import (
	"context"
	_ "embed"
	"math"
	"slices"
	"strconv"
	"strings"
)

// BuiltinOptions declares the options every project has. It is interpreted
// before a project's own option file.
//
//go:embed builtin_options.txt
var BuiltinOptions string

// OptionType is the declared type of a [BuildOption].
type OptionType int

const (
	OptionBoolean OptionType = iota // boolean
	OptionInteger                   // integer
	OptionString                    // string
	OptionCombo                     // combo
	OptionArray                     // array
)

// MarshalText implements encoding.TextMarshaler.
func (t OptionType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func parseOptionType(s string) (OptionType, bool) {
	for t := OptionBoolean; t <= OptionArray; t++ {
		if t.String() == s {
			return t, true
		}
	}

	return 0, false
}

// BuildOption is a typed, user-configurable project option.
type BuildOption struct {
	Name        string     `json:"name"              yaml:"name"`
	Type        OptionType `json:"type"              yaml:"type"`
	Value       Value      `json:"-"                 yaml:"-"`
	Description string     `json:"description"       yaml:"description"`
	Choices     []string   `json:"choices,omitempty" yaml:"choices,omitempty"`
	Min         int64      `json:"-"                 yaml:"-"`
	Max         int64      `json:"-"                 yaml:"-"`
}

// check validates v against the option's type and constraints.
func (o *BuildOption) check(v Value) (Value, error) {
	switch o.Type {
	case OptionBoolean:
		if _, ok := v.(Boolean); !ok {
			return nil, typeErrorf("Option '%s' expects a boolean, found %s", o.Name, typeName(v))
		}
	case OptionInteger:
		n, ok := v.(Integer)
		if !ok {
			return nil, typeErrorf("Option '%s' expects an integer, found %s", o.Name, typeName(v))
		}

		if int64(n) < o.Min || int64(n) > o.Max {
			return nil, runtimeErrorf(
				"Value %d for option '%s' is not in range [%d, %d]", int64(n), o.Name, o.Min, o.Max)
		}
	case OptionString:
		if _, ok := v.(String); !ok {
			return nil, typeErrorf("Option '%s' expects a string, found %s", o.Name, typeName(v))
		}
	case OptionCombo:
		s, ok := v.(String)
		if !ok {
			return nil, typeErrorf("Option '%s' expects a string, found %s", o.Name, typeName(v))
		}

		if !slices.Contains(o.Choices, string(s)) {
			return nil, runtimeErrorf(
				"Value '%s' for option '%s' is not one of the choices [%s]",
				string(s), o.Name, strings.Join(o.Choices, ", "))
		}
	case OptionArray:
		items, err := stringsOf("Values of option '"+o.Name+"'", v)
		if err != nil {
			return nil, err
		}

		out := make(Array, len(items))

		for i, item := range items {
			if len(o.Choices) > 0 && !slices.Contains(o.Choices, item) {
				return nil, runtimeErrorf(
					"Value '%s' for option '%s' is not one of the choices [%s]",
					item, o.Name, strings.Join(o.Choices, ", "))
			}

			out[i] = String(item)
		}

		return out, nil
	}

	return v, nil
}

// parse converts a command-line value to the option's type.
func (o *BuildOption) parse(raw string) (Value, error) {
	switch o.Type {
	case OptionBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil || (raw != "true" && raw != "false") {
			return nil, typeErrorf("Option '%s' expects true or false, found '%s'", o.Name, raw)
		}

		return Boolean(b), nil
	case OptionInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, typeErrorf("Option '%s' expects an integer, found '%s'", o.Name, raw)
		}

		return Integer(n), nil
	case OptionArray:
		if raw == "" {
			return Array{}, nil
		}

		parts := strings.Split(raw, ",")

		out := make(Array, len(parts))
		for i, p := range parts {
			out[i] = String(strings.TrimSpace(p))
		}

		return out, nil
	default:
		return String(raw), nil
	}
}

// SetOption assigns an option from its command-line form, converting and
// validating it against the option's declaration.
func (in *Interpreter) SetOption(name, raw string) error {
	o, ok := in.options[name]
	if !ok {
		return runtimeErrorf("Unknown option '%s'", name)
	}

	v, err := o.parse(raw)
	if err != nil {
		return err
	}

	if o.Value, err = o.check(v); err != nil {
		return err
	}

	return nil
}

// Option returns a declared option.
func (in *Interpreter) Option(name string) (*BuildOption, bool) {
	o, ok := in.options[name]

	return o, ok
}

// Options returns the declared options in declaration order.
func (in *Interpreter) Options() []*BuildOption {
	out := make([]*BuildOption, 0, len(in.order))
	for _, name := range in.order {
		out = append(out, in.options[name])
	}

	return out
}

func (in *Interpreter) declare(o *BuildOption) {
	if _, ok := in.options[o.Name]; !ok {
		in.order = append(in.order, o.Name)
	}

	in.options[o.Name] = o
}

func kwInt(c *Call, name string, def int64) (int64, error) {
	v, ok := c.Kwarg(name)
	if !ok {
		return def, nil
	}

	n, ok := v.(Integer)
	if !ok {
		return 0, typeErrorf("Expected '%s' keyword argument to be an integer, found %s", name, typeName(v))
	}

	return int64(n), nil
}

func init() {
	builtins["option"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		tv, ok := c.Kwarg("type")
		if !ok {
			return nil, typeErrorf("Option requires a 'type' keyword argument")
		}

		ts, ok := tv.(String)
		if !ok {
			return nil, typeErrorf("Expected 'type' keyword argument to be a string, found %s", typeName(tv))
		}

		typ, ok := parseOptionType(string(ts))
		if !ok {
			return nil, typeErrorf("Unsupported option type: %s", string(ts))
		}

		o := &BuildOption{Name: name, Type: typ}

		if o.Description, err = c.kwString("description", ""); err != nil {
			return nil, err
		}

		if o.Choices, err = c.kwStrings("choices"); err != nil {
			return nil, err
		}

		if o.Min, err = kwInt(c, "min", math.MinInt64); err != nil {
			return nil, err
		}

		if o.Max, err = kwInt(c, "max", math.MaxInt64); err != nil {
			return nil, err
		}

		v, ok := c.Kwarg("value")
		if !ok {
			v = o.defaultValue()
		}

		if o.Value, err = o.check(v); err != nil {
			return nil, err
		}

		in.declare(o)

		return None{}, nil
	}

	builtins["get_option"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		o, ok := in.options[name]
		if !ok {
			return nil, undefinedVariable(name)
		}

		return Clone(o.Value), nil
	}
}

func (o *BuildOption) defaultValue() Value {
	switch o.Type {
	case OptionBoolean:
		return Boolean(true)
	case OptionInteger:
		return Integer(min(max(0, o.Min), o.Max))
	case OptionArray:
		out := make(Array, len(o.Choices))
		for i, c := range o.Choices {
			out[i] = String(c)
		}

		return out
	default:
		if len(o.Choices) > 0 {
			return String(o.Choices[0])
		}

		return String("")
	}
}
