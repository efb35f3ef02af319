package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ardnew/gomeson/interp"
	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/platform/platformtest"
)

const build = `
project('demo', 'c', version: '2.0.1')

static_library('util', 'util.c', 'extra.c', install: true)
static_library('stub', 'empty.c', install: true)
static_library('internal', 'internal.c')
executable('app', 'main.c', 'gen/table.c', install: true)

conf = configuration_data({'FOO': true})
configure_file(output: 'config.h', configuration: conf,
  install: true, install_dir: '/opt/include')
install_headers('demo.h', 'api.h')
`

// setup configures the demo project with steps.
func setup(t *testing.T, steps interp.Steps) (*platformtest.Runtime, *interp.Interpreter) {
	t.Helper()

	rt := platformtest.New().AddFile("src/meson.build", build)

	in, err := interp.New(rt,
		interp.WithSourceDir("src"),
		interp.WithBuildDir("build"),
		interp.WithSteps(steps),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := in.Setup(t.Context(), nil); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	return rt, in
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer

	setup(t, NewPrinter(&buf, log.Logger{}))

	want := []string{
		" > Building static library /usr/local/lib/libutil.a: 2 sources",
		" > Building executable /usr/local/bin/app: 2 sources",
		" > Configuring file build/config.h: 27 bytes",
		" > Installing header to /opt/include: config.h header",
		" > Installing headers to /usr/local/include: 2 headers",
	}

	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorder_Describe(t *testing.T) {
	rec := &Recorder{}
	_, in := setup(t, rec)

	d := rec.Describe(in)

	wantProject := Project{
		Name:      "demo",
		Version:   "2.0.1",
		SourceDir: "src",
		BuildDir:  "build",
	}
	if diff := cmp.Diff(wantProject, d.Project, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("project mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, tgt := range d.Targets {
		names = append(names, tgt.Name)
	}

	if diff := cmp.Diff([]string{"util", "stub", "internal", "app"}, names); diff != "" {
		t.Errorf("targets mismatch (-want +got):\n%s", diff)
	}

	wantHeaders := []HeaderInstall{{
		Dir:   "/usr/local/include",
		Files: []string{"src/demo.h", "src/api.h"},
	}}
	if diff := cmp.Diff(wantHeaders, d.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	opts := map[string]Option{}
	for _, o := range d.Options {
		opts[o.Name] = o
	}

	if o := opts["buildtype"]; o.Type != "combo" || o.Value != "debug" {
		t.Errorf("buildtype = %+v", o)
	}

	if o := opts["debug"]; o.Type != "boolean" || o.Value != true {
		t.Errorf("debug = %+v", o)
	}
}

func TestDescription_Write(t *testing.T) {
	rec := &Recorder{}
	_, in := setup(t, rec)

	d := rec.Describe(in)

	var js bytes.Buffer
	if err := d.WriteJSON(t.Context(), &js, 2); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Project Project `json:"project"`
		Targets []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"targets"`
	}
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, js.String())
	}

	if decoded.Project.Name != "demo" || len(decoded.Targets) != 4 {
		t.Errorf("decoded = %+v", decoded)
	}

	if decoded.Targets[0].Kind != "static_library" || decoded.Targets[3].Kind != "executable" {
		t.Errorf("kinds = %+v", decoded.Targets)
	}

	var yml bytes.Buffer
	if err := d.WriteYAML(t.Context(), &yml, 2); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"name: demo", "version: 2.0.1", "kind: static_library", "filename: libutil.a"} {
		if !strings.Contains(yml.String(), want) {
			t.Errorf("YAML missing %q:\n%s", want, yml.String())
		}
	}
}

func TestFilter(t *testing.T) {
	rec := &Recorder{}
	_, in := setup(t, rec)

	d := rec.Describe(in)

	tests := []struct {
		name    string
		filter  Filter
		want    []string
		sources map[string][]string
	}{
		{
			name:   "no filter",
			filter: Filter{},
			want:   []string{"util", "stub", "internal", "app"},
		},
		{
			name:   "where kind",
			filter: Filter{Where: `kind == "executable"`},
			want:   []string{"app"},
		},
		{
			name:   "where install and sources",
			filter: Filter{Where: `install && len(sources) > 1`},
			want:   []string{"util", "app"},
		},
		{
			name:    "glob narrows sources",
			filter:  Filter{Glob: "src/**/t*.c"},
			want:    []string{"app"},
			sources: map[string][]string{"app": {"src/gen/table.c"}},
		},
		{
			name:   "where and glob",
			filter: Filter{Where: `name startsWith "u"`, Glob: "**/*.c"},
			want:   []string{"util"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Apply(d)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}

			var names []string
			for _, tgt := range got.Targets {
				names = append(names, tgt.Name)

				if want, ok := tt.sources[tgt.Name]; ok {
					if diff := cmp.Diff(want, tgt.Sources); diff != "" {
						t.Errorf("%s sources mismatch (-want +got):\n%s", tgt.Name, diff)
					}
				}
			}

			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("targets mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if len(d.Targets[3].Sources) != 2 {
		t.Errorf("Apply modified the input: %v", d.Targets[3].Sources)
	}
}

func TestFilter_Errors(t *testing.T) {
	d := &Description{Targets: []*interp.BuildTarget{{Name: "a"}}}

	tests := []struct {
		name   string
		filter Filter
		want   error
	}{
		{"syntax", Filter{Where: "name =="}, ErrFilterCompile},
		{"not boolean", Filter{Where: "name"}, ErrFilterCompile},
		{"unknown variable", Filter{Where: "size > 1"}, ErrFilterCompile},
		{"bad glob", Filter{Glob: "[a"}, ErrGlobPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.filter.Apply(d); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestWriter(t *testing.T) {
	rt := platformtest.New().AddFile("src/meson.build", build)

	in, err := interp.New(rt,
		interp.WithSourceDir("src"),
		interp.WithBuildDir("build"),
		interp.WithSteps(Tee(NewWriter(rt, log.Logger{}), &Recorder{})),
	)
	if err != nil {
		t.Fatal(err)
	}

	if err := in.Setup(t.Context(), nil); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	data, err := rt.ReadFile("build/config.h")
	if err != nil {
		t.Fatalf("config.h not written: %v", err)
	}

	if !strings.Contains(string(data), "#define FOO\n") {
		t.Errorf("config.h = %q", data)
	}
}

type failing struct{ interp.Discard }

var errStep = errors.New("step failed")

func (failing) BuildExecutable(context.Context, *interp.BuildTarget) error { return errStep }

func TestTee_VisitsAll(t *testing.T) {
	rec := &Recorder{}
	steps := Tee(failing{}, rec)

	err := steps.BuildExecutable(t.Context(), &interp.BuildTarget{Name: "app"})
	if !errors.Is(err, errStep) {
		t.Fatalf("expected errStep, got %v", err)
	}

	d := rec.Describe(nil)
	if len(d.Targets) != 1 {
		t.Errorf("recorder saw %d targets", len(d.Targets))
	}

	if diff := cmp.Diff(&interp.BuildTarget{Name: "app"}, d.Targets[0],
		cmpopts.IgnoreUnexported(interp.BuildTarget{})); diff != "" {
		t.Errorf("target mismatch (-want +got):\n%s", diff)
	}
}
