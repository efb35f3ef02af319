// Package machine reads machine files: the sectioned key/value files that
// describe cross builds and native toolchain overrides.
//
// Values are written in the expression syntax of build scripts. Keys may
// refer to keys of the [constants] section and to earlier keys of their own
// section:
//
//	[constants]
//	prefix = '/opt/arm/bin'
//
//	[binaries]
//	c = prefix / 'arm-none-eabi-gcc'
//	c_args = ['-mthumb'] + '-Os'
package machine

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

import (
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Kind identifies the type of a [Value].
type Kind int

const (
	KindString  Kind = iota // string
	KindInteger             // integer
	KindBoolean             // boolean
	KindArray               // array
)

// Value is an evaluated machine-file value.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Bool  bool
	Array []Value
}

// Str returns a string value.
func Str(s string) Value { return Value{Kind: KindString, Str: s} }

// Int returns an integer value.
func Int(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

// List returns an array value.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{Kind: KindArray, Array: items}
}

// String coerces v to a string. Arrays are joined with commas.
func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindArray:
		items := make([]string, len(v.Array))
		for i, item := range v.Array {
			items[i] = item.String()
		}

		return strings.Join(items, ",")
	default:
		return v.Str
	}
}

// Strings returns the string forms of the elements of an array, or the
// string form of any other value as a single element.
func (v Value) Strings() []string {
	if v.Kind != KindArray {
		return []string{v.String()}
	}

	out := make([]string, len(v.Array))
	for i, item := range v.Array {
		out[i] = item.String()
	}

	return out
}

// Native converts v to a plain Go value.
func (v Value) Native() any {
	switch v.Kind {
	case KindInteger:
		return v.Int
	case KindBoolean:
		return v.Bool
	case KindArray:
		out := make([]any, len(v.Array))
		for i, item := range v.Array {
			out[i] = item.Native()
		}

		return out
	default:
		return v.Str
	}
}

// MarshalYAML implements yaml.InterfaceMarshaler.
func (v Value) MarshalYAML() (any, error) { return v.Native(), nil }

// Section is a named group of keys in first-assigned order.
type Section struct {
	Name   string
	keys   []string
	values map[string]Value
}

func newSection(name string) *Section {
	return &Section{Name: name, values: make(map[string]Value)}
}

// Keys returns the keys of s in the order they were first assigned.
func (s *Section) Keys() []string { return s.keys }

// Get returns the value of key.
func (s *Section) Get(key string) (Value, bool) {
	v, ok := s.values[key]

	return v, ok
}

// Len returns the number of keys in s.
func (s *Section) Len() int { return len(s.keys) }

func (s *Section) set(key string, v Value) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}

	s.values[key] = v
}

// MarshalYAML implements yaml.InterfaceMarshaler, keeping key order.
func (s *Section) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, yaml.MapItem{Key: k, Value: s.values[k]})
	}

	return out, nil
}

// File is a parsed machine file.
type File struct {
	sections []*Section
	index    map[string]*Section
}

func newFile() *File {
	return &File{index: make(map[string]*Section)}
}

// Section returns the named section.
func (f *File) Section(name string) (*Section, bool) {
	if f == nil {
		return nil, false
	}

	s, ok := f.index[name]

	return s, ok
}

// Sections returns all sections in the order they first appear in the
// source, except that [constants] always comes first.
func (f *File) Sections() []*Section {
	if f == nil {
		return nil
	}

	return f.sections
}

// Get returns the value of key in section.
func (f *File) Get(section, key string) (Value, bool) {
	s, ok := f.Section(section)
	if !ok {
		return Value{}, false
	}

	return s.Get(key)
}

func (f *File) section(name string) *Section {
	s, ok := f.index[name]
	if !ok {
		s = newSection(name)
		f.index[name] = s
		f.sections = append(f.sections, s)
	}

	return s
}

// MarshalYAML implements yaml.InterfaceMarshaler, keeping section order.
func (f *File) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(f.sections))
	for _, s := range f.sections {
		out = append(out, yaml.MapItem{Key: s.Name, Value: s})
	}

	return out, nil
}
