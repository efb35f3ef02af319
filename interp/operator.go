package interp

import (
	"strings"

	"github.com/ardnew/gomeson/lang"
)

// maxStringLen bounds the length of a string built by repetition.
const maxStringLen = 64 << 20

// binary applies a non-short-circuit binary operator.
func (in *Interpreter) binary(op lang.Operator, left, right Value) (Value, error) {
	switch op {
	case lang.OpAdd:
		return add(left, right)

	case lang.OpSub:
		a, b, ok := integers(left, right)
		if !ok {
			return nil, typeErrorf("Cannot subtract %s from %s", typeName(right), typeName(left))
		}

		return a - b, nil

	case lang.OpMul:
		return multiply(left, right)

	case lang.OpDiv:
		if a, b, ok := integers(left, right); ok {
			if b == 0 {
				return nil, runtimeErrorf("Division by zero")
			}

			return a / b, nil
		}

		a, aok := left.(String)
		b, bok := right.(String)

		if aok && bok {
			return String(in.rt.JoinPaths(string(a), string(b))), nil
		}

		return nil, typeErrorf("Invalid operands for division: %s / %s", typeName(left), typeName(right))

	case lang.OpMod:
		a, b, ok := integers(left, right)
		if !ok {
			return nil, typeErrorf("Cannot modulo %s by %s", typeName(left), typeName(right))
		}

		if b == 0 {
			return nil, runtimeErrorf("Modulo by zero")
		}

		return a % b, nil

	case lang.OpEq:
		return Boolean(Equal(left, right)), nil

	case lang.OpNe:
		return Boolean(!Equal(left, right)), nil

	case lang.OpLt, lang.OpLe, lang.OpGt, lang.OpGe:
		return compare(op, left, right)

	case lang.OpAnd:
		return Boolean(Truthy(left) && Truthy(right)), nil

	case lang.OpOr:
		return Boolean(Truthy(left) || Truthy(right)), nil

	case lang.OpIn:
		return Boolean(contains(right, left)), nil

	case lang.OpNotIn:
		return Boolean(!contains(right, left)), nil
	}

	return nil, typeErrorf("Invalid binary operator %s", op)
}

func integers(left, right Value) (Integer, Integer, bool) {
	a, aok := left.(Integer)
	b, bok := right.(Integer)

	return a, b, aok && bok
}

// add implements + and +=.
func add(left, right Value) (Value, error) {
	switch a := left.(type) {
	case Integer:
		if b, ok := right.(Integer); ok {
			return a + b, nil
		}
	case String:
		if b, ok := right.(String); ok {
			return a + b, nil
		}
	case Array:
		out := make(Array, 0, len(a)+1)
		out = append(out, a...)

		if b, ok := right.(Array); ok {
			return append(out, b...), nil
		}

		return append(out, right), nil
	}

	return nil, typeErrorf("Cannot add %s and %s", typeName(left), typeName(right))
}

func multiply(left, right Value) (Value, error) {
	if a, b, ok := integers(left, right); ok {
		return a * b, nil
	}

	s, sok := left.(String)
	n, nok := right.(Integer)

	if !sok || !nok {
		s, sok = right.(String)
		n, nok = left.(Integer)
	}

	if !sok || !nok {
		return nil, typeErrorf("Invalid operands for multiplication: %s * %s", typeName(left), typeName(right))
	}

	if n < 0 {
		return nil, runtimeErrorf("Cannot repeat a string %d times", n)
	}

	if n > 0 && int64(len(s)) > maxStringLen/int64(n) {
		return nil, runtimeErrorf("Repeated string exceeds %d bytes", maxStringLen)
	}

	return String(strings.Repeat(string(s), int(n))), nil
}

func compare(op lang.Operator, left, right Value) (Value, error) {
	var c int

	switch a := left.(type) {
	case Integer:
		b, ok := right.(Integer)
		if !ok {
			return nil, typeErrorf("Cannot compare %s with %s", typeName(left), typeName(right))
		}

		c = cmpOrdered(a, b)
	case String:
		b, ok := right.(String)
		if !ok {
			return nil, typeErrorf("Cannot compare %s with %s", typeName(left), typeName(right))
		}

		c = strings.Compare(string(a), string(b))
	default:
		return nil, typeErrorf("Cannot compare %s with %s", typeName(left), typeName(right))
	}

	switch op {
	case lang.OpLt:
		return Boolean(c < 0), nil
	case lang.OpLe:
		return Boolean(c <= 0), nil
	case lang.OpGt:
		return Boolean(c > 0), nil
	default:
		return Boolean(c >= 0), nil
	}
}

func cmpOrdered(a, b Integer) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// contains implements membership. A right side that is not a container
// contains nothing.
func contains(container, item Value) bool {
	switch c := container.(type) {
	case Array:
		for _, v := range c {
			if Equal(item, v) {
				return true
			}
		}
	case String:
		if s, ok := item.(String); ok {
			return strings.Contains(string(c), string(s))
		}
	case Dict:
		if k, ok := item.(String); ok {
			_, found := c[string(k)]

			return found
		}
	}

	return false
}

func unary(op lang.Operator, v Value) (Value, error) {
	switch op {
	case lang.OpNot:
		return Boolean(!Truthy(v)), nil
	case lang.OpNeg:
		n, ok := v.(Integer)
		if !ok {
			return nil, typeErrorf("Cannot negate %s", typeName(v))
		}

		return -n, nil
	}

	return nil, typeErrorf("Invalid unary operator %s", op)
}

func subscript(target, index Value) (Value, error) {
	switch t := target.(type) {
	case Array:
		i, ok := index.(Integer)
		if !ok {
			return nil, typeErrorf("Array index must be an integer, found %s", typeName(index))
		}

		n := int64(i)
		if n < 0 {
			n += int64(len(t))
		}

		if n < 0 || n >= int64(len(t)) {
			return nil, runtimeErrorf("Index %d out of bounds", int64(i))
		}

		return t[n], nil

	case String:
		i, ok := index.(Integer)
		if !ok {
			return nil, typeErrorf("String index must be an integer, found %s", typeName(index))
		}

		runes := []rune(string(t))

		n := int64(i)
		if n < 0 {
			n += int64(len(runes))
		}

		if n < 0 || n >= int64(len(runes)) {
			return nil, runtimeErrorf("String index %d out of bounds", int64(i))
		}

		return String(string(runes[n])), nil

	case Dict:
		k, ok := index.(String)
		if !ok {
			return nil, typeErrorf("Dictionary key must be a string, found %s", typeName(index))
		}

		v, found := t[string(k)]
		if !found {
			return nil, runtimeErrorf("Key '%s' not found", string(k))
		}

		return v, nil
	}

	return nil, typeErrorf("Cannot subscript %s", typeName(target))
}
