package interp

import (
	"context"
	"path"
	"slices"
	"strings"
)

// FS is the filesystem module returned by import('fs'). Relative paths
// resolve against the directory of the running script.
type FS struct {
	objectKind
}

func (*FS) ObjectName() string { return "FS" }
func (*FS) String() string     { return "fs" }

func (f *FS) equal(o Object) bool { return sameContents(f, o) }

func (f *FS) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return fsMethods.dispatch(ctx, in, f, f.ObjectName(), c)
}

// pathArg returns the path argument at index i. File objects are accepted
// in place of strings.
func pathArg(c *Call, i int) (string, error) {
	if v, ok := c.Arg(i); ok {
		if f, ok := v.(*File); ok {
			return f.Path, nil
		}
	}

	return c.stringArg(i)
}

// stat wraps a Runtime predicate as an fs method.
func stat(what string, check func(in *Interpreter, p string) (bool, error)) method[*FS] {
	return func(_ *FS, _ context.Context, in *Interpreter, c *Call) (Value, error) {
		p, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		ok, err := check(in, in.rt.JoinPaths(in.currentDir, p))
		if err != nil {
			return nil, runtimeErrorf("Failed to check if path %s: %w", what, err)
		}

		return Boolean(ok), nil
	}
}

// pathFunc wraps a pure path transformation as an fs method.
func pathFunc(fn func(string) string) method[*FS] {
	return func(_ *FS, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		p, err := pathArg(c, 0)
		if err != nil {
			return nil, err
		}

		return String(fn(p)), nil
	}
}

var fsMethods = methodTable[*FS]{
	"exists": stat("exists", func(in *Interpreter, p string) (bool, error) {
		return in.rt.Exists(p)
	}),
	"is_file": stat("is a file", func(in *Interpreter, p string) (bool, error) {
		return in.rt.IsFile(p)
	}),
	"is_dir": stat("is a directory", func(in *Interpreter, p string) (bool, error) {
		return in.rt.IsDir(p)
	}),
	"name":   pathFunc(path.Base),
	"parent": pathFunc(path.Dir),
	"stem": pathFunc(func(p string) string {
		base := path.Base(p)

		return strings.TrimSuffix(base, path.Ext(base))
	}),
}

func init() {
	fsMethods["replace_suffix"] = func(_ *FS, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		p, err := pathArg(c, 0)
		if err != nil {
			return nil, err
		}

		suffix, err := c.stringArg(1)
		if err != nil {
			return nil, err
		}

		return String(strings.TrimSuffix(p, path.Ext(p)) + suffix), nil
	}

	fsMethods["glob"] = func(_ *FS, _ context.Context, in *Interpreter, c *Call) (Value, error) {
		pattern, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		matches, err := in.rt.Glob(in.currentDir, pattern)
		if err != nil {
			return nil, runtimeErrorf("Failed to glob '%s': %w", pattern, err)
		}

		slices.Sort(matches)

		out := make(Array, len(matches))
		for i, m := range matches {
			out[i] = String(in.rt.JoinPaths(in.currentDir, m))
		}

		return out, nil
	}
}
