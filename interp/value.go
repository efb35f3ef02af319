package interp

//go:generate go tool stringer --linecomment --type Type --output type_string.go

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Type identifies the kind of a [Value].
type Type int

const (
	TypeString  Type = iota // string
	TypeInteger             // integer
	TypeBoolean             // boolean
	TypeArray               // array
	TypeDict                // dict
	TypeNone                // none
	TypeObject              // object
)

// Value is a runtime value. The set of implementations is closed: String,
// Integer, Boolean, Array, Dict, None, and the object kinds.
type Value interface {
	Type() Type
	value()
}

type (
	String  string
	Integer int64
	Boolean bool

	// Array is an ordered sequence. Reads of a variable holding an Array
	// observe a copy.
	Array []Value

	// Dict maps string keys to values. Iteration order is sorted by key.
	Dict map[string]Value

	// None is the absence of a value.
	None struct{}
)

func (String) Type() Type  { return TypeString }
func (Integer) Type() Type { return TypeInteger }
func (Boolean) Type() Type { return TypeBoolean }
func (Array) Type() Type   { return TypeArray }
func (Dict) Type() Type    { return TypeDict }
func (None) Type() Type    { return TypeNone }

func (String) value()  {}
func (Integer) value() {}
func (Boolean) value() {}
func (Array) value()   {}
func (Dict) value()    {}
func (None) value()    {}

// typeName names the kind of v in diagnostics; objects report their own
// kind.
func typeName(v Value) string {
	if o, ok := v.(Object); ok {
		return o.ObjectName()
	}

	if v == nil {
		return TypeNone.String()
	}

	return v.Type().String()
}

// TypeName names the kind of v as reported in diagnostics.
func TypeName(v Value) string { return typeName(v) }

// Truthy coerces v to a boolean.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case Boolean:
		return bool(v)
	case Integer:
		return v != 0
	case String:
		return v != ""
	case Array:
		return len(v) > 0
	case Dict:
		return len(v) > 0
	case None, nil:
		return false
	default:
		return true
	}
}

// Format coerces v to its string form.
func Format(v Value) string {
	switch v := v.(type) {
	case String:
		return string(v)
	case Integer:
		return strconv.FormatInt(int64(v), 10)
	case Boolean:
		return strconv.FormatBool(bool(v))
	case Array:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = Format(item)
		}

		return "[" + strings.Join(items, ", ") + "]"
	case Dict:
		items := make([]string, 0, len(v))
		for _, k := range slices.Sorted(maps.Keys(v)) {
			items = append(items, k+": "+Format(v[k]))
		}

		return "{" + strings.Join(items, ", ") + "}"
	case Object:
		return v.String()
	default:
		return "none"
	}
}

// Equal reports whether a and b are equal. A String equals any value whose
// string form matches it; objects are equal when they are the same kind with
// equal contents.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case String:
		if b, ok := b.(String); ok {
			return a == b
		}

		return string(a) == Format(b)
	case Integer:
		switch b := b.(type) {
		case Integer:
			return a == b
		case String:
			return Format(a) == string(b)
		}
	case Boolean:
		switch b := b.(type) {
		case Boolean:
			return a == b
		case String:
			return Format(a) == string(b)
		}
	case Array:
		switch b := b.(type) {
		case Array:
			return slices.EqualFunc(a, b, Equal)
		case String:
			return Format(a) == string(b)
		}
	case Dict:
		switch b := b.(type) {
		case Dict:
			return maps.EqualFunc(a, b, Equal)
		case String:
			return Format(a) == string(b)
		}
	case None:
		switch b := b.(type) {
		case None:
			return true
		case String:
			return Format(a) == string(b)
		}
	case Object:
		switch b := b.(type) {
		case Object:
			return a.equal(b)
		case String:
			return a.String() == string(b)
		}
	}

	return false
}

// Clone returns a deep copy of v. Objects are shared handles and are
// returned as is.
func Clone(v Value) Value {
	switch v := v.(type) {
	case Array:
		out := make(Array, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}

		return out
	case Dict:
		out := make(Dict, len(v))
		for k, item := range v {
			out[k] = Clone(item)
		}

		return out
	default:
		return v
	}
}

// Flatten unwraps nested arrays depth first, preserving order.
func Flatten(values ...Value) []Value {
	out := make([]Value, 0, len(values))

	var walk func([]Value)

	walk = func(vs []Value) {
		for _, v := range vs {
			if arr, ok := v.(Array); ok {
				walk(arr)

				continue
			}

			out = append(out, v)
		}
	}

	walk(values)

	return out
}

// Native converts v to plain Go values for serialization: string, int64,
// bool, []any, map[string]any, nil, or the string form of an object.
func Native(v Value) any {
	switch v := v.(type) {
	case String:
		return string(v)
	case Integer:
		return int64(v)
	case Boolean:
		return bool(v)
	case Array:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Native(item)
		}

		return out
	case Dict:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Native(item)
		}

		return out
	case Object:
		return v.String()
	default:
		return nil
	}
}

// stringsOf converts every value of a flattened argument list to a string,
// failing on the first value of another kind.
func stringsOf(what string, values ...Value) ([]string, error) {
	flat := Flatten(values...)
	out := make([]string, 0, len(flat))

	for _, v := range flat {
		s, ok := v.(String)
		if !ok {
			return nil, typeErrorf(
				"%s must be strings, found %s", what, typeName(v),
			)
		}

		out = append(out, string(s))
	}

	return out, nil
}
