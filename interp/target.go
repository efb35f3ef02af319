package interp

//go:generate go tool stringer --linecomment --type TargetKind --output targetkind_string.go

import (
	"context"
	"path"
	"strings"
)

// TargetKind distinguishes the outputs of a [BuildTarget].
type TargetKind int

const (
	Executable    TargetKind = iota // executable
	StaticLibrary                   // static_library
)

// MarshalText implements encoding.TextMarshaler.
func (k TargetKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// BuildTarget is an executable or static library declared by a script.
type BuildTarget struct {
	objectKind `json:"-" yaml:"-"`

	Name        string     `json:"name"                   yaml:"name"`
	Kind        TargetKind `json:"kind"                   yaml:"kind"`
	Filename    string     `json:"filename"               yaml:"filename"`
	BuildDir    string     `json:"build_dir"              yaml:"build_dir"`
	Sources     []string   `json:"sources"                yaml:"sources"`
	Objects     []string   `json:"objects,omitempty"      yaml:"objects,omitempty"`
	IncludeDirs []string   `json:"include_dirs,omitempty" yaml:"include_dirs,omitempty"`
	CArgs       []string   `json:"c_args,omitempty"       yaml:"c_args,omitempty"`
	Install     bool       `json:"install"                yaml:"install"`
	InstallDir  string     `json:"install_dir"            yaml:"install_dir"`
}

// FullPath returns the path of the target's output in the build directory.
func (t *BuildTarget) FullPath() string {
	return t.BuildDir + "/" + t.Filename
}

func (*BuildTarget) ObjectName() string { return "BuildTarget" }

func (t *BuildTarget) String() string {
	return t.Kind.String() + "(" + t.Name + ")"
}

func (t *BuildTarget) equal(o Object) bool { return sameContents(t, o) }

func (t *BuildTarget) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return targetMethods.dispatch(ctx, in, t, t.ObjectName(), c)
}

// ExtractedObjects are object files taken from another target's sources.
type ExtractedObjects struct {
	objectKind

	Target  string
	Sources []string
}

func (*ExtractedObjects) ObjectName() string { return "ExtractedObjects" }

func (e *ExtractedObjects) String() string {
	return "ExtractedObjects(" + e.Target + ": " + strings.Join(e.Sources, ", ") + ")"
}

func (e *ExtractedObjects) equal(o Object) bool { return sameContents(e, o) }

func (e *ExtractedObjects) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return methodTable[*ExtractedObjects]{}.dispatch(ctx, in, e, e.ObjectName(), c)
}

var targetMethods = methodTable[*BuildTarget]{}

func init() {
	targetMethods["name"] = func(t *BuildTarget, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(t.Name), nil
	}

	targetMethods["full_path"] = func(t *BuildTarget, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(t.FullPath()), nil
	}

	targetMethods["extract_all_objects"] = func(t *BuildTarget, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return &ExtractedObjects{Target: t.Name, Sources: append([]string(nil), t.Sources...)}, nil
	}

	targetMethods["extract_objects"] = func(t *BuildTarget, _ context.Context, in *Interpreter, c *Call) (Value, error) {
		paths, err := in.filePaths(c.Args...)
		if err != nil {
			return nil, err
		}

		picked := make([]string, 0, len(paths))

		for _, p := range paths {
			src, ok := t.source(p)
			if !ok {
				return nil, runtimeErrorf("Source '%s' is not part of target '%s'", p, t.Name)
			}

			picked = append(picked, src)
		}

		return &ExtractedObjects{Target: t.Name, Sources: picked}, nil
	}
}

// source finds a target source by path or by base name.
func (t *BuildTarget) source(p string) (string, bool) {
	for _, s := range t.Sources {
		if s == p || path.Base(s) == path.Base(p) {
			return s, true
		}
	}

	return "", false
}

// declareTarget implements executable and static_library.
func declareTarget(kind TargetKind) builtin {
	return func(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
		name, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		sources, err := in.filePaths(c.Args[1:]...)
		if err != nil {
			return nil, err
		}

		t := &BuildTarget{
			Name:     name,
			Kind:     kind,
			Filename: name,
			BuildDir: in.buildDir,
			Sources:  sources,
		}

		if kind == StaticLibrary {
			t.Filename = "lib" + name + ".a"
		}

		if t.Install, err = c.kwBool("install", false); err != nil {
			return nil, err
		}

		if t.InstallDir, err = in.installDir(c, defaultInstallDir(kind)); err != nil {
			return nil, err
		}

		if t.CArgs, err = c.kwStrings("c_args"); err != nil {
			return nil, err
		}

		if t.Objects, err = extractedObjects(c); err != nil {
			return nil, err
		}

		if v, ok := c.Kwarg("include_directories"); ok {
			if t.IncludeDirs, err = in.includeDirs(v); err != nil {
				return nil, err
			}
		}

		in.rt.Print("Created " + strings.ReplaceAll(kind.String(), "_", " ") + ": " + t.FullPath())

		switch kind {
		case StaticLibrary:
			err = in.steps.BuildStaticLibrary(ctx, t)
		default:
			err = in.steps.BuildExecutable(ctx, t)
		}

		if err != nil {
			return nil, runtimeErrorf("%w", err)
		}

		return t, nil
	}
}

func defaultInstallDir(kind TargetKind) string {
	if kind == StaticLibrary {
		return "libdir"
	}

	return "bindir"
}

func extractedObjects(c *Call) ([]string, error) {
	v, ok := c.Kwarg("objects")
	if !ok {
		return nil, nil
	}

	var out []string

	for _, item := range Flatten(v) {
		e, ok := item.(*ExtractedObjects)
		if !ok {
			return nil, typeErrorf("Elements of 'objects' must be ExtractedObjects, found %s", typeName(item))
		}

		out = append(out, e.Sources...)
	}

	return out, nil
}
