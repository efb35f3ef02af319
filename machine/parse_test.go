package machine

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/gomeson/lang"
)

func TestParseString_Values(t *testing.T) {
	const source = `
[constants]
toolchain_prefix = '/usr/bin/'
gcc_name = 'gcc'
base_url = 'https://example.com'
url = base_url / '#some_hash'
array = [
    'item1',
    'item2',
    'item3'
] + 'item4'

[binaries]
c = toolchain_prefix / gcc_name # some comment here
cpp = toolchain_prefix / 'g++'

[properties]
jobs = 4
needs_exe_wrapper = true
`

	f, err := ParseString(t.Context(), source)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	tests := []struct {
		section, key string
		want         Value
	}{
		{"constants", "url", Str("https://example.com/#some_hash")},
		{"constants", "array", List(Str("item1"), Str("item2"), Str("item3"), Str("item4"))},
		{"binaries", "c", Str("/usr/bin/gcc")},
		{"binaries", "cpp", Str("/usr/bin/g++")},
		{"properties", "jobs", Int(4)},
		{"properties", "needs_exe_wrapper", Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.section+"."+tt.key, func(t *testing.T) {
			got, ok := f.Get(tt.section, tt.key)
			if !ok {
				t.Fatalf("%s.%s not found", tt.section, tt.key)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseString_Concatenation(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Value
	}{
		{
			name: "strings",
			source: `
[constants]
prefix = '-D'
foo = 'FOO'

[properties]
c_args = [prefix + foo + '=1', '-DBAR=2']
`,
			want: List(Str("-DFOO=1"), Str("-DBAR=2")),
		},
		{
			name: "arrays",
			source: `
[constants]
base_args = ['-O2', '-g']

[properties]
c_args = base_args + ['-DFOO=1']
`,
			want: List(Str("-O2"), Str("-g"), Str("-DFOO=1")),
		},
		{
			name: "string prepended to array",
			source: `
[properties]
c_args = '-Wall' + ['-Wextra']
`,
			want: List(Str("-Wall"), Str("-Wextra")),
		},
		{
			name: "section-local reference",
			source: `
[properties]
base = ['-g']
c_args = base + '-O0'
`,
			want: List(Str("-g"), Str("-O0")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseString(t.Context(), tt.source)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			got, _ := f.Get("properties", "c_args")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("c_args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseString_Composition(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		want    string
		wantErr bool
	}{
		{
			name: "reassignment keeps position",
			source: `
[constants]
a = 'Foo'
b = a + 'World'

[constants]
a = 'Hello'
`,
			want: "HelloWorld",
		},
		{
			name: "forward reference",
			source: `
[constants]
b = a + 'World'

[constants]
a = 'Hello'
`,
			wantErr: true,
		},
		{
			name: "earlier key",
			source: `
[constants]
a = 'Hello'

[constants]
b = a + 'World'
`,
			want: "HelloWorld",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseString(t.Context(), tt.source, WithName("cross.ini"))
			if tt.wantErr {
				if !errors.Is(err, lang.ErrUnexpectedToken) {
					t.Fatalf("expected ErrUnexpectedToken, got %v", err)
				}

				if !errors.Is(err, ErrMachineFile) {
					t.Errorf("expected ErrMachineFile, got %v", err)
				}

				if !strings.Contains(err.Error(), "cross.ini:3") {
					t.Errorf("error should locate the key: %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			got, _ := f.Get("constants", "b")
			if got.String() != tt.want {
				t.Errorf("b = %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"subtraction", "[p]\nx = 1 - 2"},
		{"join non-strings", "[p]\nx = 1 / 2"},
		{"function call", "[p]\nx = f()"},
		{"assignment value", "[p]\nx = y = 1"},
		{"unterminated array", "[p]\nx = [1,\n2,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(t.Context(), tt.source)
			if !errors.Is(err, lang.ErrUnexpectedToken) {
				t.Errorf("expected ErrUnexpectedToken, got %v", err)
			}
		})
	}
}

func TestParse_SectionOrder(t *testing.T) {
	const source = "[host_machine]\nsystem = 'linux'\n[constants]\nx = 1\n[binaries]\nc = 'cc'\n"

	f, err := Parse(t.Context(), strings.NewReader(source))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var names []string
	for _, s := range f.Sections() {
		names = append(names, s.Name)
	}

	want := []string{"constants", "host_machine", "binaries"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Str("a"), "a"},
		{Int(-3), "-3"},
		{Bool(false), "false"},
		{List(Str("a"), Int(1), List(Str("b"), Str("c"))), "a,1,b,c"},
	}

	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}
