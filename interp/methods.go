package interp

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Method tables of the primitive kinds. Integer and Boolean methods fall
// back to a TypeError when the name is not in their table.
var (
	stringMethods  = methodTable[String]{}
	arrayMethods   = methodTable[Array]{}
	dictMethods    = methodTable[Dict]{}
	integerMethods = methodTable[Integer]{}
	booleanMethods = methodTable[Boolean]{}
)

func init() {
	stringMethods["format"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		out := string(s)
		for i, arg := range c.Args {
			out = strings.ReplaceAll(out, "@"+strconv.Itoa(i)+"@", Format(arg))
		}

		return String(out), nil
	}

	stringMethods["split"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		sep := " "

		if _, ok := c.Arg(0); ok {
			var err error
			if sep, err = c.stringArg(0); err != nil {
				return nil, err
			}
		}

		parts := strings.Split(string(s), sep)

		out := make(Array, len(parts))
		for i, p := range parts {
			out[i] = String(p)
		}

		return out, nil
	}

	stringMethods["join"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		flat := Flatten(c.Args...)

		items := make([]string, len(flat))
		for i, v := range flat {
			items[i] = Format(v)
		}

		return String(strings.Join(items, string(s))), nil
	}

	stringMethods["strip"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		if _, ok := c.Arg(0); !ok {
			return String(strings.TrimSpace(string(s))), nil
		}

		chars, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		return String(strings.Trim(string(s), chars)), nil
	}

	stringMethods["startswith"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		prefix, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		return Boolean(strings.HasPrefix(string(s), prefix)), nil
	}

	stringMethods["endswith"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		suffix, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		return Boolean(strings.HasSuffix(string(s), suffix)), nil
	}

	stringMethods["contains"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		sub, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		return Boolean(strings.Contains(string(s), sub)), nil
	}

	stringMethods["substring"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		runes := []rune(string(s))
		n := int64(len(runes))

		start, err := c.intArg(0, 0)
		if err != nil {
			return nil, err
		}

		end, err := c.intArg(1, n)
		if err != nil {
			return nil, err
		}

		lo, hi := substringBounds(n, start, end)

		return String(runes[lo:hi]), nil
	}

	stringMethods["underscorify"] = func(s String, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				return r
			default:
				return '_'
			}
		}, string(s))), nil
	}

	stringMethods["to_upper"] = func(s String, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(strings.ToUpper(string(s))), nil
	}

	stringMethods["to_lower"] = func(s String, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(strings.ToLower(string(s))), nil
	}

	stringMethods["to_int"] = func(s String, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		n, err := strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
		if err != nil {
			return nil, runtimeErrorf("String '%s' cannot be converted to int", string(s))
		}

		return Integer(n), nil
	}

	stringMethods["replace"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		old, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		repl, err := c.stringArg(1)
		if err != nil {
			return nil, err
		}

		return String(strings.ReplaceAll(string(s), old, repl)), nil
	}

	stringMethods["version_compare"] = func(s String, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		req, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		ok, err := versionCompare(string(s), req)
		if err != nil {
			return nil, err
		}

		return Boolean(ok), nil
	}

	arrayMethods["length"] = func(a Array, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return Integer(len(a)), nil
	}

	arrayMethods["contains"] = func(a Array, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		item, err := c.requireArg(0)
		if err != nil {
			return nil, err
		}

		return Boolean(slices.ContainsFunc(a, func(v Value) bool { return Equal(v, item) })), nil
	}

	arrayMethods["get"] = func(a Array, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		if _, err := c.requireArg(0); err != nil {
			return nil, err
		}

		idx, err := c.intArg(0, 0)
		if err != nil {
			return nil, err
		}

		if idx < 0 {
			idx += int64(len(a))
		}

		if idx >= 0 && idx < int64(len(a)) {
			return Clone(a[idx]), nil
		}

		if fallback, ok := c.Arg(1); ok {
			return fallback, nil
		}

		return nil, runtimeErrorf("Index out of range and no fallback value provided")
	}

	dictMethods["get"] = func(d Dict, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		key, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		if v, ok := d[key]; ok {
			return Clone(v), nil
		}

		if fallback, ok := c.Arg(1); ok {
			return fallback, nil
		}

		return nil, runtimeErrorf("Key not found and no fallback value provided")
	}

	dictMethods["has_key"] = func(d Dict, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		key, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		_, ok := d[key]

		return Boolean(ok), nil
	}

	dictMethods["keys"] = func(d Dict, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		keys := slices.Sorted(maps.Keys(d))

		out := make(Array, len(keys))
		for i, k := range keys {
			out[i] = String(k)
		}

		return out, nil
	}

	dictMethods["values"] = func(d Dict, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		keys := slices.Sorted(maps.Keys(d))

		out := make(Array, len(keys))
		for i, k := range keys {
			out[i] = Clone(d[k])
		}

		return out, nil
	}

	integerMethods["to_string"] = func(n Integer, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(Format(n)), nil
	}

	integerMethods["is_even"] = func(n Integer, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return Boolean(n%2 == 0), nil
	}

	integerMethods["is_odd"] = func(n Integer, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return Boolean(n%2 != 0), nil
	}

	booleanMethods["to_string"] = func(b Boolean, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		yes, no := "true", "false"

		if len(c.Args) > 0 {
			var err error
			if yes, err = c.stringArg(0); err != nil {
				return nil, err
			}

			if no, err = c.stringArg(1); err != nil {
				return nil, err
			}
		}

		if b {
			return String(yes), nil
		}

		return String(no), nil
	}

	booleanMethods["to_int"] = func(b Boolean, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		if b {
			return Integer(1), nil
		}

		return Integer(0), nil
	}
}

// substringBounds maps possibly negative indices into a string of n
// characters. Negative indices count from the end (offset by one), both are
// clamped to [0, n-1], and hi is never less than lo.
func substringBounds(n, start, end int64) (lo, hi int64) {
	if n == 0 {
		return 0, 0
	}

	if start < 0 {
		start += n - 1
	}

	if end < 0 {
		end += n - 1
	}

	lo = min(max(start, 0), n-1)
	hi = min(max(end, lo), n-1)

	return lo, hi
}

// Methods returns the names of the methods callable on v in sorted order.
func Methods(v Value) []string {
	var names []string

	switch v.(type) {
	case String:
		names = slices.Collect(maps.Keys(stringMethods))
	case Array:
		names = slices.Collect(maps.Keys(arrayMethods))
	case Dict:
		names = slices.Collect(maps.Keys(dictMethods))
	case Integer:
		names = slices.Collect(maps.Keys(integerMethods))
	case Boolean:
		names = slices.Collect(maps.Keys(booleanMethods))
	case *Meson:
		names = slices.Collect(maps.Keys(mesonMethods))
	case *Compiler:
		names = slices.Collect(maps.Keys(compilerMethods))
	case *ConfigData:
		names = slices.Collect(maps.Keys(configMethods))
	case *Env:
		names = slices.Collect(maps.Keys(envMethods))
	case *FS:
		names = slices.Collect(maps.Keys(fsMethods))
	case *Machine:
		names = slices.Collect(maps.Keys(machineMethods))
	case *ExternalProgram:
		names = slices.Collect(maps.Keys(programMethods))
	case *RunResult:
		names = slices.Collect(maps.Keys(runResultMethods))
	case *BuildTarget:
		names = slices.Collect(maps.Keys(targetMethods))
	case *Version:
		names = slices.Collect(maps.Keys(versionMethods))
	}

	if _, ok := v.(Object); ok {
		names = append(names, "to_string")
	}

	slices.Sort(names)

	return names
}
