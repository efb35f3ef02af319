package interp

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ConfigEntry is one value of a [ConfigData] with its description.
type ConfigEntry struct {
	Value       Value
	Description string
}

// ConfigData is a set of named values used to generate or fill in
// configuration headers.
type ConfigData struct {
	objectKind

	Entries map[string]ConfigEntry
}

func newConfigData() *ConfigData {
	return &ConfigData{Entries: make(map[string]ConfigEntry)}
}

func (*ConfigData) ObjectName() string { return "ConfigData" }

func (d *ConfigData) String() string {
	return "ConfigData(" + strings.Join(d.Keys(), ", ") + ")"
}

// Keys returns the keys in sorted order.
func (d *ConfigData) Keys() []string {
	return slices.Sorted(maps.Keys(d.Entries))
}

func (d *ConfigData) equal(o Object) bool { return sameContents(d, o) }

func (d *ConfigData) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return configMethods.dispatch(ctx, in, d, d.ObjectName(), c)
}

// Header renders the entries as a C header: one #define or #undef per key,
// sorted, each preceded by its description.
func (d *ConfigData) Header() (string, error) {
	var b strings.Builder

	b.WriteString("#pragma once\n\n")

	for _, k := range d.Keys() {
		e := d.Entries[k]

		if e.Description != "" {
			b.WriteString("// " + e.Description + "\n")
		}

		line, err := define(k, e.Value)
		if err != nil {
			return "", err
		}

		b.WriteString(line + "\n\n")
	}

	return b.String(), nil
}

// define renders a single preprocessor definition.
func define(key string, v Value) (string, error) {
	switch v := v.(type) {
	case Boolean:
		if v {
			return "#define " + key, nil
		}

		return "#undef " + key, nil
	case Integer:
		return "#define " + key + " " + strconv.FormatInt(int64(v), 10), nil
	case String:
		return "#define " + key + " " + string(v), nil
	default:
		return "", typeErrorf("Unsupported value type for key %s: %s", key, typeName(v))
	}
}

var (
	placeholder = regexp.MustCompile(`@([A-Za-z0-9_]+)@`)
	mesondefine = regexp.MustCompile(`^\s*#\s*mesondefine\s+([A-Za-z0-9_]+)\s*$`)
)

// Substitute fills in a template: @KEY@ is replaced by the value of KEY
// (booleans as 1 or 0) and "#mesondefine KEY" lines become definitions.
// Placeholders naming missing keys are an error.
func (d *ConfigData) Substitute(template string) (string, error) {
	var missing []string

	lines := strings.SplitAfter(template, "\n")

	for i, line := range lines {
		body := strings.TrimRight(line, "\r\n")
		eol := line[len(body):]

		if m := mesondefine.FindStringSubmatch(body); m != nil {
			e, ok := d.Entries[m[1]]
			if !ok {
				lines[i] = "/* #undef " + m[1] + " */" + eol

				continue
			}

			def, err := define(m[1], e.Value)
			if err != nil {
				return "", err
			}

			lines[i] = def + eol

			continue
		}

		lines[i] = placeholder.ReplaceAllStringFunc(line, func(s string) string {
			key := s[1 : len(s)-1]

			e, ok := d.Entries[key]
			if !ok {
				if !slices.Contains(missing, key) {
					missing = append(missing, key)
				}

				return s
			}

			switch v := e.Value.(type) {
			case Boolean:
				if v {
					return "1"
				}

				return "0"
			default:
				return Format(v)
			}
		})
	}

	if len(missing) > 0 {
		return "", runtimeErrorf("Variables not found in configuration: %s", strings.Join(missing, ", "))
	}

	return strings.Join(lines, ""), nil
}

// ConfiguredFile is a file generated by configure_file.
type ConfiguredFile struct {
	BuildDir   string `json:"build_dir"   yaml:"build_dir"`
	Filename   string `json:"filename"    yaml:"filename"`
	Content    string `json:"content"     yaml:"content"`
	InstallDir string `json:"install_dir" yaml:"install_dir"`
	Install    bool   `json:"install"     yaml:"install"`
}

// Path returns where the file is written in the build directory.
func (f *ConfiguredFile) Path() string {
	return f.BuildDir + "/" + f.Filename
}

var configMethods = methodTable[*ConfigData]{}

func configValue(v Value, ok bool) (Value, error) {
	switch v.(type) {
	case String, Integer, Boolean:
		return v, nil
	}

	if !ok {
		return nil, typeErrorf("Expected a str, int or bool as the second argument")
	}

	return nil, typeErrorf("Expected a str, int or bool as the second argument, found %s", typeName(v))
}

func init() {
	set := func(d *ConfigData, c *Call, v Value) (Value, error) {
		key, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		desc, err := c.kwString("description", "")
		if err != nil {
			return nil, err
		}

		d.Entries[key] = ConfigEntry{Value: v, Description: desc}

		return None{}, nil
	}

	configMethods["set"] = func(d *ConfigData, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		v, err := configValue(c.Arg(1))
		if err != nil {
			return nil, err
		}

		return set(d, c, v)
	}

	configMethods["set_quoted"] = func(d *ConfigData, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		s, err := c.stringArg(1)
		if err != nil {
			return nil, err
		}

		return set(d, c, String(strconv.Quote(s)))
	}

	configMethods["set10"] = func(d *ConfigData, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		v, _ := c.Arg(1)

		switch v := v.(type) {
		case Boolean:
			if v {
				return set(d, c, Integer(1))
			}

			return set(d, c, Integer(0))
		case Integer:
			if v > 0 {
				return set(d, c, Integer(1))
			}

			return set(d, c, Integer(0))
		}

		return nil, typeErrorf("Expected int or bool as the second argument")
	}

	configMethods["get"] = func(d *ConfigData, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		key, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		if e, ok := d.Entries[key]; ok {
			return e.Value, nil
		}

		if def, ok := c.Arg(1); ok {
			return def, nil
		}

		return nil, runtimeErrorf("Key '%s' not found in ConfigData", key)
	}

	configMethods["has"] = func(d *ConfigData, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		key, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		_, ok := d.Entries[key]

		return Boolean(ok), nil
	}

	configMethods["keys"] = func(d *ConfigData, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		keys := d.Keys()

		out := make(Array, len(keys))
		for i, k := range keys {
			out[i] = String(k)
		}

		return out, nil
	}

	configMethods["merge_from"] = func(d *ConfigData, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		v, err := c.requireArg(0)
		if err != nil {
			return nil, err
		}

		switch other := v.(type) {
		case *ConfigData:
			maps.Copy(d.Entries, other.Entries)
		case Dict:
			for k, item := range other {
				d.Entries[k] = ConfigEntry{Value: item}
			}
		default:
			return nil, typeErrorf("merge_from requires a ConfigData object or a dict, found %s", typeName(v))
		}

		return None{}, nil
	}

	builtins["configuration_data"] = func(_ context.Context, _ *Interpreter, c *Call) (Value, error) {
		d := newConfigData()

		v, ok := c.Arg(0)
		if !ok {
			return d, nil
		}

		dict, ok := v.(Dict)
		if !ok {
			return nil, typeErrorf("First argument to configuration_data must be a dict, found %s", typeName(v))
		}

		for k, item := range dict {
			if _, err := configValue(item, true); err != nil {
				return nil, err
			}

			d.Entries[k] = ConfigEntry{Value: item}
		}

		return d, nil
	}

	builtins["configure_file"] = configureFile
}

func configureFile(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	output, ok := c.Kwarg("output")
	if !ok {
		return nil, typeErrorf("configure_file requires an 'output' keyword argument")
	}

	filename, ok := output.(String)
	if !ok {
		return nil, typeErrorf("configure_file 'output' keyword argument must be a string")
	}

	conf, ok := c.Kwarg("configuration")
	if !ok {
		return nil, typeErrorf("configure_file requires a 'configuration' keyword argument of type ConfigData")
	}

	var data *ConfigData

	switch v := conf.(type) {
	case *ConfigData:
		data = v
	case Dict:
		data = newConfigData()
		for k, item := range v {
			data.Entries[k] = ConfigEntry{Value: item}
		}
	default:
		return nil, typeErrorf("configure_file 'configuration' keyword argument must be ConfigData, found %s", typeName(conf))
	}

	install, err := c.kwBool("install", false)
	if err != nil {
		return nil, err
	}

	installDir, err := c.kwString("install_dir", "")
	if err != nil {
		return nil, err
	}

	switch {
	case installDir != "":
		installDir = in.rt.JoinPaths(in.optionString("prefix"), installDir)
	case install:
		installDir = in.optionDir("includedir")
	}

	var content string

	input, err := c.kwString("input", "")
	if err != nil {
		return nil, err
	}

	if input != "" {
		path := in.rt.JoinPaths(in.currentDir, input)

		template, err := in.rt.ReadFile(path)
		if err != nil {
			return nil, runtimeErrorf("Failed to read %s: %w", path, err)
		}

		if content, err = data.Substitute(string(template)); err != nil {
			return nil, err
		}
	} else if content, err = data.Header(); err != nil {
		return nil, err
	}

	f := &ConfiguredFile{
		BuildDir:   in.currentBuildDir(),
		Filename:   string(filename),
		Content:    content,
		InstallDir: installDir,
		Install:    install,
	}

	if err := in.steps.ConfigureFile(ctx, f); err != nil {
		return nil, runtimeErrorf("%w", err)
	}

	return &File{Path: f.Path()}, nil
}
