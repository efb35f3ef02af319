package interp

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ardnew/gomeson/machine"
	"github.com/ardnew/gomeson/platform"
	"github.com/ardnew/gomeson/platform/platformtest"
)

const projectBuild = `
project('demo', 'c', version: '1.2.3')

with_x = get_option('with_x')
inc = include_directories('inc')

util = static_library('util', 'util.c', install: true)
app = executable('app', files('main.c'),
  objects: util.extract_all_objects(),
  include_directories: inc,
  c_args: ['-DAPP'],
)

subdir('sub')

conf = configuration_data()
conf.set('HAVE_X', with_x, description: 'X support')
conf.set('VERSION', meson.project_version())
config = configure_file(output: 'config.h', configuration: conf)

install_headers('demo.h')
`

const subBuild = `
sub_source = meson.current_source_dir()
sub_build = meson.current_build_dir()
`

func TestSetup(t *testing.T) {
	rt := platformtest.New().
		AddFile("src/meson.build", projectBuild).
		AddFile("src/meson_options.txt", "option('with_x', type: 'boolean', value: false)").
		AddFile("src/sub/meson.build", subBuild)

	rec := &recorder{}
	in := newInterp(t, rt, WithSourceDir("src"), WithBuildDir("build"), WithSteps(rec))

	if err := in.Setup(t.Context(), map[string]string{"with_x": "true"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if m := in.Meson(); m.ProjectName != "demo" || m.ProjectVersion != "1.2.3" {
		t.Errorf("project = %s %s", m.ProjectName, m.ProjectVersion)
	}

	wantTargets := []*BuildTarget{
		{
			Name:       "util",
			Kind:       StaticLibrary,
			Filename:   "libutil.a",
			BuildDir:   "build",
			Sources:    []string{"src/util.c"},
			Install:    true,
			InstallDir: "/usr/local/lib",
		},
		{
			Name:        "app",
			Kind:        Executable,
			Filename:    "app",
			BuildDir:    "build",
			Sources:     []string{"src/main.c"},
			Objects:     []string{"src/util.c"},
			IncludeDirs: []string{"src/inc"},
			CArgs:       []string{"-DAPP"},
			InstallDir:  "/usr/local/bin",
		},
	}

	opts := cmp.Options{cmpopts.IgnoreUnexported(BuildTarget{}), cmpopts.EquateEmpty()}
	if diff := cmp.Diff(wantTargets, rec.targets, opts); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}

	wantPrinted := []string{
		"Created static library: build/libutil.a",
		"Created executable: build/app",
	}
	if diff := cmp.Diff(wantPrinted, rt.Printed); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}

	wantConfig := []*ConfiguredFile{{
		BuildDir: "build",
		Filename: "config.h",
		Content:  "#pragma once\n\n// X support\n#define HAVE_X\n\n#define VERSION 1.2.3\n\n",
	}}
	if diff := cmp.Diff(wantConfig, rec.configured); diff != "" {
		t.Errorf("configured mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(map[string][]string{"/usr/local/include": {"src/demo.h"}}, rec.headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	vars := map[string]Value{
		"sub_source": String("src/sub"),
		"sub_build":  String("build/sub"),
		"with_x":     Boolean(true),
	}
	for name, want := range vars {
		if got := mustGet(t, in, name); !Equal(got, want) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	if f, ok := mustGet(t, in, "config").(*File); !ok || f.Path != "build/config.h" {
		t.Errorf("configure_file returned %v", mustGet(t, in, "config"))
	}

	if in.CurrentDir() != "src" {
		t.Errorf("current dir = %q after subdir", in.CurrentDir())
	}
}

func TestSubdir_RestoresCursorOnError(t *testing.T) {
	rt := platformtest.New().
		AddFile("src/meson.build", "subdir('bad')").
		AddFile("src/bad/meson.build", "x = 1\ny = nope")

	in := newInterp(t, rt, WithSourceDir("src"))

	err := in.RunFile(t.Context(), "src/meson.build")

	var se *ScriptError
	if !errors.As(err, &se) || se.File != "src/bad/meson.build" || se.Pos.Line != 2 {
		t.Fatalf("expected error located in subdir script, got %v", err)
	}

	if !errors.Is(err, ErrUndefinedVariable) {
		t.Errorf("expected ErrUndefinedVariable, got %v", err)
	}

	if in.CurrentDir() != "src" {
		t.Errorf("current dir = %q, want src", in.CurrentDir())
	}
}

const crossFile = `
[host_machine]
system = 'baremetal'
cpu_family = 'arm'
cpu = 'cortex-m4'
endian = 'little'

[binaries]
c = ['arm-none-eabi-gcc', '-mthumb']

[properties]
needs_exe_wrapper = true

[built-in options]
buildtype = 'release'
`

const crossBuild = `
project('fw', 'c')
sys = host_machine.system()
target = target_machine.cpu()
build_sys = build_machine.system()
cross = meson.is_cross_build()
prop = meson.get_cross_property('needs_exe_wrapper')
fallback = meson.get_external_property('nope', 'dflt')
cmd = meson.get_compiler('c').cmd_array()
bt = get_option('buildtype')
`

func TestSetup_CrossFile(t *testing.T) {
	cross, err := machine.ParseString(t.Context(), crossFile, machine.WithName("cross.ini"))
	if err != nil {
		t.Fatalf("parse cross file: %v", err)
	}

	rt := platformtest.New().AddFile("meson.build", crossBuild)
	in := newInterp(t, rt, WithCrossFile(cross))

	if err := in.Setup(t.Context(), nil); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	want := map[string]Value{
		"sys":       String("baremetal"),
		"target":    String("cortex-m4"),
		"build_sys": String("linux"),
		"cross":     Boolean(true),
		"prop":      Boolean(true),
		"fallback":  String("dflt"),
		"cmd":       Array{String("arm-none-eabi-gcc"), String("-mthumb")},
		"bt":        String("release"),
	}

	for name, w := range want {
		if diff := cmp.Diff(w, mustGet(t, in, name)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	if _, err := in.Exec(t.Context(), "meson.get_cross_property('nope')"); !errors.Is(err, ErrRuntime) {
		t.Errorf("expected ErrRuntime for a missing property, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	ctx := t.Context()

	in := newInterp(t, platformtest.New())
	if err := in.RunString(ctx, "builtin_options.txt", BuiltinOptions); err != nil {
		t.Fatalf("builtin options: %v", err)
	}

	err := in.RunString(ctx, "meson_options.txt", `
option('level', type: 'integer', min: 1, max: 5, value: 2)
option('mode', type: 'combo', choices: ['a', 'b'])
option('list', type: 'array', choices: ['x', 'y'])
option('name', type: 'string')
option('flag', type: 'boolean')
`)
	if err != nil {
		t.Fatalf("declare options: %v", err)
	}

	defaults := map[string]Value{
		"level":      Integer(2),
		"mode":       String("a"),
		"list":       Array{String("x"), String("y")},
		"name":       String(""),
		"flag":       Boolean(true),
		"buildtype":  String("debug"),
		"libdir":     String("lib"),
		"werror":     Boolean(false),
		"c_std":      String("none"),
		"prefix":     String("/usr/local"),
		"b_ndebug":   String("false"),
		"debug":      Boolean(true),
		"includedir": String("include"),
	}
	for name, want := range defaults {
		got := mustExec(t, in, "get_option('"+name+"')")
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	sets := []struct {
		name, raw string
		want      Value
		err       error
	}{
		{name: "level", raw: "5", want: Integer(5)},
		{name: "level", raw: "6", err: ErrRuntime},
		{name: "level", raw: "two", err: ErrType},
		{name: "mode", raw: "b", want: String("b")},
		{name: "mode", raw: "c", err: ErrRuntime},
		{name: "list", raw: "y, x", want: Array{String("y"), String("x")}},
		{name: "list", raw: "z", err: ErrRuntime},
		{name: "flag", raw: "false", want: Boolean(false)},
		{name: "flag", raw: "yes", err: ErrType},
		{name: "nope", raw: "1", err: ErrRuntime},
	}
	for _, tt := range sets {
		err := in.SetOption(tt.name, tt.raw)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("SetOption(%s, %s) = %v, want %v", tt.name, tt.raw, err, tt.err)
			}

			continue
		}

		if err != nil {
			t.Errorf("SetOption(%s, %s): %v", tt.name, tt.raw, err)

			continue
		}

		o, _ := in.Option(tt.name)
		if diff := cmp.Diff(tt.want, o.Value); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.name, diff)
		}
	}

	var names []string
	for _, o := range in.Options() {
		names = append(names, o.Name)
	}

	if names[0] != "buildtype" || names[len(names)-1] != "flag" {
		t.Errorf("options out of declaration order: %v", names)
	}

	declErrors := []struct {
		source string
		want   error
	}{
		{"option('a', type: 'float')", ErrType},
		{"option('a')", ErrType},
		{"option('a', type: 'string', value: 1)", ErrType},
		{"option('a', type: 'integer', value: 'x')", ErrType},
		{"option('a', type: 'integer', min: 0, max: 3, value: 4)", ErrRuntime},
		{"option('a', type: 'combo', choices: ['x'], value: 'y')", ErrRuntime},
		{"get_option('undeclared')", ErrUndefinedVariable},
	}
	for _, tt := range declErrors {
		if _, err := in.Exec(ctx, tt.source); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.source, err, tt.want)
		}
	}
}

func TestOptions_IntegerDefault(t *testing.T) {
	tests := []struct {
		decl string
		want Integer
	}{
		{"option('n', type: 'integer')", 0},
		{"option('n', type: 'integer', min: 3)", 3},
		{"option('n', type: 'integer', min: -10, max: -5)", -5},
		{"option('n', type: 'integer', min: -10, max: 10)", 0},
		{"option('n', type: 'integer', min: -10, max: -5, value: -7)", -7},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			in := newInterp(t, platformtest.New())

			if err := in.RunString(t.Context(), "meson_options.txt", tt.decl); err != nil {
				t.Fatalf("declare: %v", err)
			}

			if got := mustExec(t, in, "get_option('n')"); !Equal(got, tt.want) {
				t.Errorf("get_option('n') = %v, want %d", got, tt.want)
			}
		})
	}
}

func TestConfigData_Substitute(t *testing.T) {
	d := newConfigData()
	d.Entries["A"] = ConfigEntry{Value: String("x")}
	d.Entries["B"] = ConfigEntry{Value: Boolean(true)}
	d.Entries["C"] = ConfigEntry{Value: Integer(3)}
	d.Entries["D"] = ConfigEntry{Value: Boolean(false)}

	got, err := d.Substitute("a=@A@ b=@B@\n#mesondefine C\n  #mesondefine D\n#mesondefine E\nend")
	if err != nil {
		t.Fatalf("Substitute: %v", err)
	}

	want := "a=x b=1\n#define C 3\n#undef D\n/* #undef E */\nend"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	_, err = d.Substitute("@Z@ @A@ @Y@ @Z@")
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("expected ErrRuntime, got %v", err)
	}

	if want := "Runtime error: Variables not found in configuration: Z, Y"; err.Error() != want {
		t.Errorf("error = %q, want %q", err, want)
	}
}

func TestConfigData_Methods(t *testing.T) {
	in := newInterp(t, platformtest.New())

	err := in.RunString(t.Context(), "test", `
conf = configuration_data({'A': 'a'})
conf.set10('T', true)
conf.set10('F', 0)
conf.set_quoted('Q', 'q')
other = configuration_data()
other.merge_from(conf)
other.merge_from({'M': 1})
result = [other.keys(), other.get('T'), other.get('Q'), other.get('nope', 'd'), other.has('F')]
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Array{
		Array{String("A"), String("F"), String("M"), String("Q"), String("T")},
		Integer(1),
		String(`"q"`),
		String("d"),
		Boolean(true),
	}
	if diff := cmp.Diff(want, mustGet(t, in, "result")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := in.Exec(t.Context(), "conf.get('nope')"); !errors.Is(err, ErrRuntime) {
		t.Errorf("expected ErrRuntime, got %v", err)
	}
}

func TestExecutable_NestedSources(t *testing.T) {
	rt := platformtest.New().
		AddFile("src/meson.build", "project('p', 'c')\napp = executable('app', 'a.c', ['b.c', 'c.c'])\n")

	rec := &recorder{}
	in := newInterp(t, rt, WithSourceDir("src"), WithBuildDir("build"), WithSteps(rec))

	if err := in.Setup(t.Context(), nil); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if len(rec.targets) != 1 {
		t.Fatalf("built %d targets", len(rec.targets))
	}

	want := []string{"src/a.c", "src/b.c", "src/c.c"}
	if diff := cmp.Diff(want, rec.targets[0].Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigureFile_Header(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			name:   "sorted",
			script: "conf = configuration_data({'FOO': true, 'BAR': 3, 'BAZ': 'x'})",
			want:   "#pragma once\n\n#define BAR 3\n\n#define BAZ x\n\n#define FOO\n\n",
		},
		{
			name: "described",
			script: "conf = configuration_data()\n" +
				"conf.set('FOO', true)\n" +
				"conf.set('BAR', 3, description: 'bar count')\n" +
				"conf.set_quoted('BAZ', 'x')\n" +
				"conf.set('OFF', false)",
			want: "#pragma once\n\n// bar count\n#define BAR 3\n\n#define BAZ \"x\"\n\n" +
				"#define FOO\n\n#undef OFF\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			in := newInterp(t, platformtest.New(), WithBuildDir("build"), WithSteps(rec))

			script := tt.script + "\nconfigure_file(output: 'config.h', configuration: conf)\n"
			if err := in.RunString(t.Context(), "meson.build", script); err != nil {
				t.Fatalf("run: %v", err)
			}

			if len(rec.configured) != 1 {
				t.Fatalf("configured %d files", len(rec.configured))
			}

			if diff := cmp.Diff(tt.want, rec.configured[0].Content); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigureFile_Template(t *testing.T) {
	rt := platformtest.New().
		AddFile("src/version.h.in", "#define V \"@VERSION@\"\n#mesondefine HAVE_Y\n").
		AddFile("src/meson.build", `
conf = configuration_data()
conf.set('VERSION', '1.0')
configure_file(input: 'version.h.in', output: 'version.h', configuration: conf)
`)

	rec := &recorder{}
	in := newInterp(t, rt, WithSourceDir("src"), WithBuildDir("out"), WithSteps(rec))

	if err := in.RunFile(t.Context(), "src/meson.build"); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(rec.configured) != 1 {
		t.Fatalf("configured %d files", len(rec.configured))
	}

	want := "#define V \"1.0\"\n/* #undef HAVE_Y */\n"
	if got := rec.configured[0].Content; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestEnvironment(t *testing.T) {
	in := newInterp(t, platformtest.New())

	err := in.RunString(t.Context(), "test", `
env = environment({'A': 'x'})
env.prepend('PATH', '/a', '/b')
env.append('PATH', '/c')
env.prepend('PATH', '/z')
env.set('LIST', 'p', 'q', separator: ';')
env.unset('A')
result = [env.get('PATH'), env.get('LIST'), env.get('A', 'gone')]
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Array{String("/z:/a:/b:/c"), String("p;q"), String("gone")}
	if diff := cmp.Diff(want, mustGet(t, in, "result")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	env, ok := mustGet(t, in, "env").(*Env)
	if !ok {
		t.Fatal("env is not an Env")
	}

	if diff := cmp.Diff([]string{"LIST=p;q", "PATH=/z:/a:/b:/c"}, env.Environ()); diff != "" {
		t.Errorf("environ mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironment_RepeatedItems(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"prepend", "e.prepend('P', 'b')", "b:a:b"},
		{"append", "e.append('P', 'a')", "a:b:a"},
		{"prepend many", "e.prepend('P', 'a', 'a')", "a:a:a:b"},
		{"separator", "e.append('P', 'b', separator: ';')", "a:b;b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInterp(t, platformtest.New())

			script := "e = environment()\ne.set('P', 'a', 'b')\n" + tt.script + "\nv = e.get('P')\n"
			if err := in.RunString(t.Context(), "test", script); err != nil {
				t.Fatalf("run: %v", err)
			}

			if got := mustGet(t, in, "v"); !Equal(got, String(tt.want)) {
				t.Errorf("P = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestPrograms(t *testing.T) {
	rt := platformtest.New()
	rt.Programs["echo"] = "/bin/echo"
	rt.Run = func(_ *platformtest.Runtime, argv []string) platform.CommandOutput {
		if argv[len(argv)-1] == "fail" {
			return platform.CommandOutput{Stderr: "boom", ExitCode: 2}
		}

		return platform.CommandOutput{Stdout: "hi\n"}
	}

	in := newInterp(t, rt)

	err := in.RunString(t.Context(), "test", `
echo = find_program('echo')
r = run_command(echo, 'hi', check: true)
missing = find_program('nope')
soft = run_command('echo', 'fail')
result = [echo.found(), echo.full_path(), r.stdout().strip(), r.returncode(), missing.found(), soft.returncode(), soft.stderr()]
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Array{
		Boolean(true), String("/bin/echo"), String("hi"), Integer(0),
		Boolean(false), Integer(2), String("boom"),
	}
	if diff := cmp.Diff(want, mustGet(t, in, "result")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"/bin/echo", "hi"}, rt.Commands[0]); diff != "" {
		t.Errorf("argv mismatch (-want +got):\n%s", diff)
	}

	for _, src := range []string{
		"run_command('echo', 'fail', check: true)",
		"find_program('nope', required: true)",
		"run_command(find_program('nope'))",
	} {
		if _, err := in.Exec(t.Context(), src); !errors.Is(err, ErrRuntime) {
			t.Errorf("%s: expected ErrRuntime, got %v", src, err)
		}
	}

	if got := mustExec(t, in, "find_program('nope').full_path()"); got != (None{}) {
		t.Errorf("full_path of a missing program = %v", got)
	}
}

func TestFS(t *testing.T) {
	rt := platformtest.New().
		AddFile("src/a.c", "").
		AddFile("src/sub/b.c", "").
		AddFile("src/sub/b.h", "")

	in := newInterp(t, rt, WithSourceDir("src"))

	tests := []struct {
		input string
		want  Value
	}{
		{"fs.exists('a.c')", Boolean(true)},
		{"fs.exists('z.c')", Boolean(false)},
		{"fs.is_dir('sub')", Boolean(true)},
		{"fs.is_file('sub')", Boolean(false)},
		{"fs.glob('**/*.c')", Array{String("src/a.c"), String("src/sub/b.c")}},
		{"fs.replace_suffix('x/foo.c', '.o')", String("x/foo.o")},
		{"fs.stem('x/foo.tar.gz')", String("foo.tar")},
		{"fs.name('x/foo.c')", String("foo.c")},
		{"fs.parent('x/foo.c')", String("x")},
		{"fs.name(files('a.c')[0])", String("a.c")},
		{"import('fs').is_file('a.c')", Boolean(true)},
		{"join_paths('a', ['b', '/c'], 'd')", String("/c/d")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, mustExec(t, in, tt.input)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := in.Exec(t.Context(), "import('nope')"); !errors.Is(err, ErrRuntime) {
		t.Errorf("expected ErrRuntime, got %v", err)
	}
}

func TestCompiler(t *testing.T) {
	rt := platformtest.New()
	rt.Run = platformtest.Compiler("# 1 \"input.c\"\n"+`"MESON_DELIMITER"`+" gcc\n", "-Wbogus")

	in := newInterp(t, rt)

	err := in.RunString(t.Context(), "test", `
add_project_arguments('-DPROJECT', language: 'c')
cc = meson.get_compiler('c')
result = [
  cc.get_id(),
  cc.get_linker_id(),
  cc.has_argument('-Wall'),
  cc.has_argument('-Wbogus'),
  cc.get_supported_arguments('-Wall', ['-Wbogus', '-O2']),
  cc.links('int main() { return 0; }'),
  cc.compiles('int x;', args: ['-Wbogus']),
  add_languages('c', 'cpp'),
  add_languages('fortran'),
]
`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := Array{
		String("gcc"),
		String(linkerID),
		Boolean(true),
		Boolean(false),
		Array{String("-Wall"), String("-O2")},
		Boolean(true),
		Boolean(false),
		Boolean(true),
		Boolean(false),
	}
	if diff := cmp.Diff(want, mustGet(t, in, "result")); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	for _, argv := range rt.Commands {
		if argv[0] != "cc" || !slices.Contains(argv, "-DPROJECT") {
			t.Errorf("probe ran without project arguments: %v", argv)
		}
	}

	for _, src := range []string{
		"cc.has_argument('-Wbogus', required: true)",
		"meson.get_compiler('fortran')",
		"add_languages('fortran', required: true)",
	} {
		if _, err := in.Exec(t.Context(), src); !errors.Is(err, ErrRuntime) {
			t.Errorf("%s: expected ErrRuntime, got %v", src, err)
		}
	}
}
