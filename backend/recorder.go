package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/gomeson/interp"
)

// Description is everything a configured project declares.
type Description struct {
	Project         Project                  `json:"project"                    yaml:"project"`
	Options         []Option                 `json:"options,omitempty"          yaml:"options,omitempty"`
	Targets         []*interp.BuildTarget    `json:"targets,omitempty"          yaml:"targets,omitempty"`
	ConfiguredFiles []*interp.ConfiguredFile `json:"configured_files,omitempty" yaml:"configured_files,omitempty"`
	Headers         []HeaderInstall          `json:"headers,omitempty"          yaml:"headers,omitempty"`
}

// Project identifies the configured project.
type Project struct {
	Name      string              `json:"name"                yaml:"name"`
	Version   string              `json:"version"             yaml:"version"`
	SourceDir string              `json:"source_dir"          yaml:"source_dir"`
	BuildDir  string              `json:"build_dir"           yaml:"build_dir"`
	Args      map[string][]string `json:"args,omitempty"      yaml:"args,omitempty"`
	Cross     bool                `json:"cross,omitempty"     yaml:"cross,omitempty"`
}

// Option is a build option and its resolved value.
type Option struct {
	Name    string   `json:"name"              yaml:"name"`
	Type    string   `json:"type"              yaml:"type"`
	Value   any      `json:"value"             yaml:"value"`
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// HeaderInstall is one install_headers call.
type HeaderInstall struct {
	Dir   string   `json:"dir"   yaml:"dir"`
	Files []string `json:"files" yaml:"files"`
}

// Recorder collects build steps into a [Description].
type Recorder struct {
	mu   sync.Mutex
	desc Description
}

func (r *Recorder) BuildStaticLibrary(_ context.Context, t *interp.BuildTarget) error {
	return r.addTarget(t)
}

func (r *Recorder) BuildExecutable(_ context.Context, t *interp.BuildTarget) error {
	return r.addTarget(t)
}

func (r *Recorder) addTarget(t *interp.BuildTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.Targets = append(r.desc.Targets, t)

	return nil
}

func (r *Recorder) ConfigureFile(_ context.Context, f *interp.ConfiguredFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.ConfiguredFiles = append(r.desc.ConfiguredFiles, f)

	return nil
}

func (r *Recorder) InstallHeaders(_ context.Context, dir string, headers []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.desc.Headers = append(r.desc.Headers, HeaderInstall{
		Dir:   dir,
		Files: slices.Clone(headers),
	})

	return nil
}

// Describe returns the recorded steps together with the project metadata
// and options of in.
func (r *Recorder) Describe(in *interp.Interpreter) *Description {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.desc
	d.Targets = slices.Clone(d.Targets)
	d.ConfiguredFiles = slices.Clone(d.ConfiguredFiles)
	d.Headers = slices.Clone(d.Headers)

	if in == nil {
		return &d
	}

	m := in.Meson()
	d.Project = Project{
		Name:      m.ProjectName,
		Version:   m.ProjectVersion,
		SourceDir: m.SourceDir,
		BuildDir:  m.BuildDir,
		Args:      m.ProjectArgs,
		Cross:     m.Cross,
	}

	for _, o := range in.Options() {
		d.Options = append(d.Options, Option{
			Name:    o.Name,
			Type:    o.Type.String(),
			Value:   interp.Native(o.Value),
			Choices: o.Choices,
		})
	}

	return &d
}

// WriteJSON writes d as JSON. A positive indent pretty-prints.
func (d *Description) WriteJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(d, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(d)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// WriteYAML writes d as YAML. A zero indent selects flow style.
func (d *Description) WriteYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, d, opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
