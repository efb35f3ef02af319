package interp

import (
	"context"
	"strings"
)

// File is a source path resolved against the directory of the script that
// named it.
type File struct {
	objectKind

	Path string
}

func (*File) ObjectName() string { return "File" }
func (f *File) String() string   { return f.Path }

func (f *File) equal(o Object) bool { return sameContents(f, o) }

func (f *File) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return methodTable[*File]{}.dispatch(ctx, in, f, f.ObjectName(), c)
}

// IncludeDirectories is a list of resolved header search directories.
type IncludeDirectories struct {
	objectKind

	Dirs []string
}

func (*IncludeDirectories) ObjectName() string { return "IncludeDirectories" }

func (d *IncludeDirectories) String() string {
	return "IncludeDirectories(" + strings.Join(d.Dirs, ", ") + ")"
}

func (d *IncludeDirectories) equal(o Object) bool { return sameContents(d, o) }

func (d *IncludeDirectories) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return methodTable[*IncludeDirectories]{}.dispatch(ctx, in, d, d.ObjectName(), c)
}

// filePaths resolves strings against the current directory and passes File
// objects through. Arrays are flattened.
func (in *Interpreter) filePaths(values ...Value) ([]string, error) {
	flat := Flatten(values...)
	out := make([]string, 0, len(flat))

	for _, v := range flat {
		switch v := v.(type) {
		case String:
			out = append(out, in.rt.JoinPaths(in.currentDir, string(v)))
		case *File:
			out = append(out, v.Path)
		default:
			return nil, typeErrorf(
				"Expected arguments to be strings or File objects, found %s", typeName(v))
		}
	}

	return out, nil
}

// includeDirs resolves an include_directories keyword argument.
func (in *Interpreter) includeDirs(v Value) ([]string, error) {
	var out []string

	for _, item := range Flatten(v) {
		switch item := item.(type) {
		case String:
			out = append(out, in.rt.JoinPaths(in.currentDir, string(item)))
		case *IncludeDirectories:
			out = append(out, item.Dirs...)
		default:
			return nil, typeErrorf(
				"Elements of 'include_directories' must be strings or IncludeDirectories, found %s",
				typeName(item))
		}
	}

	return out, nil
}

// installDir returns the install_dir keyword argument, or the directory
// named by option under prefix.
func (in *Interpreter) installDir(c *Call, option string) (string, error) {
	dir, err := c.kwString("install_dir", "")
	if err != nil || dir != "" {
		return dir, err
	}

	return in.optionDir(option), nil
}

// optionDir joins the value of a directory option under prefix.
func (in *Interpreter) optionDir(option string) string {
	return in.rt.JoinPaths(in.optionString("prefix"), in.optionString(option))
}

// optionString returns the string form of an option value, or "" when the
// option is not declared.
func (in *Interpreter) optionString(name string) string {
	if o, ok := in.options[name]; ok {
		return Format(o.Value)
	}

	return ""
}

// currentBuildDir mirrors the current source subdirectory under the build
// directory.
func (in *Interpreter) currentBuildDir() string {
	if in.subdir == "" {
		return in.buildDir
	}

	return in.rt.JoinPaths(in.buildDir, in.subdir)
}

func init() {
	builtins["files"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		paths, err := in.filePaths(c.Args...)
		if err != nil {
			return nil, err
		}

		out := make(Array, len(paths))
		for i, p := range paths {
			out[i] = &File{Path: p}
		}

		return out, nil
	}

	builtins["include_directories"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		dirs, err := in.filePaths(c.Args...)
		if err != nil {
			return nil, err
		}

		return &IncludeDirectories{Dirs: dirs}, nil
	}

	builtins["install_headers"] = func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		headers, err := in.filePaths(c.Args...)
		if err != nil {
			return nil, err
		}

		dir, err := in.installDir(c, "includedir")
		if err != nil {
			return nil, err
		}

		if err := in.steps.InstallHeaders(ctx, dir, headers); err != nil {
			return nil, runtimeErrorf("%w", err)
		}

		return None{}, nil
	}

	builtins["join_paths"] = func(_ context.Context, in *Interpreter, c *Call) (Value, error) {
		parts, err := stringsOf("Arguments to join_paths", c.Args...)
		if err != nil {
			return nil, err
		}

		return String(in.rt.JoinPaths(parts...)), nil
	}

	builtins["executable"] = declareTarget(Executable)
	builtins["static_library"] = declareTarget(StaticLibrary)
}
