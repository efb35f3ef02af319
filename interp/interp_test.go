package interp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/gomeson/platform/platformtest"
)

// recorder collects build steps.
type recorder struct {
	targets    []*BuildTarget
	configured []*ConfiguredFile
	headers    map[string][]string
}

func (r *recorder) BuildStaticLibrary(_ context.Context, t *BuildTarget) error {
	r.targets = append(r.targets, t)

	return nil
}

func (r *recorder) BuildExecutable(_ context.Context, t *BuildTarget) error {
	r.targets = append(r.targets, t)

	return nil
}

func (r *recorder) ConfigureFile(_ context.Context, f *ConfiguredFile) error {
	r.configured = append(r.configured, f)

	return nil
}

func (r *recorder) InstallHeaders(_ context.Context, dir string, headers []string) error {
	if r.headers == nil {
		r.headers = make(map[string][]string)
	}

	r.headers[dir] = append(r.headers[dir], headers...)

	return nil
}

func newInterp(t *testing.T, rt *platformtest.Runtime, opts ...Option) *Interpreter {
	t.Helper()

	in, err := New(rt, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return in
}

// mustExec evaluates source and fails the test on error.
func mustExec(t *testing.T, in *Interpreter, source string) Value {
	t.Helper()

	v, err := in.Exec(t.Context(), source)
	if err != nil {
		t.Fatalf("Exec(%q): %v", source, err)
	}

	return v
}

func mustGet(t *testing.T, in *Interpreter, name string) Value {
	t.Helper()

	v, ok := in.Get(name)
	if !ok {
		t.Fatalf("variable %s is not set", name)
	}

	return v
}

func TestExec_Expressions(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"1 + 2 * 3", Integer(7)},
		{"7 / 2", Integer(3)},
		{"7 % 3", Integer(1)},
		{"-(3)", Integer(-3)},
		{"'a' / 'b'", String("a/b")},
		{"'a' / '/b'", String("/b")},
		{"'ab' * 3", String("ababab")},
		{"2 * 'x'", String("xx")},
		{"[1] + 2", Array{Integer(1), Integer(2)}},
		{"[1] + [2, 3]", Array{Integer(1), Integer(2), Integer(3)}},
		{"'x' in 'xyz'", Boolean(true)},
		{"'k' in {'k': 1}", Boolean(true)},
		{"2 in [1, 2]", Boolean(true)},
		{"1 in 2", Boolean(false)},
		{"1 not in 2", Boolean(true)},
		{"[1, 2, 3][-1]", Integer(3)},
		{"'héllo'[1]", String("é")},
		{"{'a': 1}['a']", Integer(1)},
		{"1 < 2 and 'b' > 'a'", Boolean(true)},
		{"1 == '1'", Boolean(true)},
		{"[1, 2] == [1, 2]", Boolean(true)},
		{"not []", Boolean(true)},
		{"false or 0", Boolean(false)},
		{"true ? 'y' : 'n'", String("y")},
		{"{'a': 1, 'a': 2}", Dict{"a": Integer(2)}},
		{"'abc' in ['abc', 'def']", Boolean(true)},
		{"'ab' in 'abcdef'", Boolean(true)},
		{"5 in {'5': 1}", Boolean(false)},
		{"'5' in {'5': 1}", Boolean(true)},
		{"9223372036854775807 + 1", Integer(math.MinInt64)},
		{"-9223372036854775807 - 2", Integer(math.MaxInt64)},
		{"4611686018427387904 * 2", Integer(math.MinInt64)},
		{"9223372036854775807 * 9223372036854775807", Integer(1)},
		{"-7 % 3", Integer(-1)},
		{"'ab' * 0", String("")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			in := newInterp(t, platformtest.New())

			got := mustExec(t, in, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   []Value
		want []Value
	}{
		{
			name: "nested",
			in: []Value{
				Integer(1),
				Array{Array{}, Integer(2), Array{Integer(3), Integer(4)}, Array{}},
				Array{},
				Integer(5),
			},
			want: []Value{Integer(1), Integer(2), Integer(3), Integer(4), Integer(5)},
		},
		{
			name: "scalars untouched",
			in:   []Value{String("a"), Dict{"k": Array{Integer(1)}}},
			want: []Value{String("a"), Dict{"k": Array{Integer(1)}}},
		},
		{
			name: "empty",
			in:   []Value{Array{Array{}}},
			want: []Value{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Flatten(tt.in...)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExec_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"1 / 0", ErrRuntime},
		{"1 % 0", ErrRuntime},
		{"'a' * -1", ErrRuntime},
		{"'ab' * 4611686018427387904", ErrRuntime},
		{"'ab' * 9223372036854775807", ErrRuntime},
		{"4611686018427387904 * 'ab'", ErrRuntime},
		{"'x' * 67108865", ErrRuntime},
		{"1 + 'a'", ErrType},
		{"1 - 'a'", ErrType},
		{"1 < 'a'", ErrType},
		{"[1][5]", ErrRuntime},
		{"{}['x']", ErrRuntime},
		{"{'a': 1}[1]", ErrType},
		{"1[0]", ErrType},
		{"nope", ErrUndefinedVariable},
		{"nope()", ErrUndefinedFunction},
		{"'a'.nope()", ErrRuntime},
		{"[].nope()", ErrRuntime},
		{"true.nope()", ErrType},
		{"foreach x : 1\nendforeach", ErrType},
		{"error('bad', 1)", ErrRuntime},
		{"assert(false, 'nope')", ErrRuntime},
		{"assert(1)", ErrType},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			in := newInterp(t, platformtest.New())

			_, err := in.Exec(t.Context(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}

			var se *ScriptError
			if !errors.As(err, &se) {
				t.Fatalf("expected *ScriptError, got %T", err)
			}

			if se.Pos.Line < 1 {
				t.Errorf("error is not located: %v", err)
			}
		})
	}
}

func TestRun_ErrorLocation(t *testing.T) {
	in := newInterp(t, platformtest.New())

	err := in.RunString(t.Context(), "meson.build", "x = 1\ny = x + 'a'\n")

	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ScriptError, got %v", err)
	}

	if se.File != "meson.build" || se.Pos.Line != 2 {
		t.Errorf("error at %s:%d, want meson.build:2", se.File, se.Pos.Line)
	}

	if !errors.Is(err, ErrType) {
		t.Errorf("expected ErrType, got %v", err)
	}
}

func TestRun_ControlFlow(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Value
	}{
		{
			name: "break and continue",
			source: `
total = 0
foreach x : [1, 2, 3, 4, 5]
  if x == 2
    continue
  elif x == 4
    break
  endif
  total += x
endforeach
result = total
`,
			want: Integer(4),
		},
		{
			name: "dict iterates sorted keys",
			source: `
result = []
foreach k : {'b': 1, 'a': 2}
  result += k
endforeach
`,
			want: Array{String("a"), String("b")},
		},
		{
			name: "string iterates characters",
			source: `
result = ''
foreach c : 'abc'
  result = c + result
endforeach
`,
			want: String("cba"),
		},
		{
			name:   "else branch",
			source: "if 0\n result = 'if'\nelif ''\n result = 'elif'\nelse\n result = 'else'\nendif",
			want:   String("else"),
		},
		{
			name:   "stray break stops the script",
			source: "result = 1\nbreak\nresult = 2",
			want:   Integer(1),
		},
		{
			name:   "arrays are copied on read",
			source: "a = [1]\nb = a\nb += 2\nresult = a",
			want:   Array{Integer(1)},
		},
		{
			name:   "objects are shared",
			source: "c = configuration_data()\nd = c\nd.set('K', 1)\nresult = c.has('K')",
			want:   Boolean(true),
		},
		{
			name:   "format string",
			source: "name = 'x'\nn = 2\nresult = f'@name@-@n@-@missing@'",
			want:   String("x-2-@missing@"),
		},
		{
			name:   "add assign creates",
			source: "result += 'a'",
			want:   String("a"),
		},
		{
			name:   "variables by name",
			source: "set_variable('v' + '1', 3)\nresult = [is_variable('v1'), get_variable('v1'), get_variable('v2', 0)]",
			want:   Array{Boolean(true), Integer(3), Integer(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInterp(t, platformtest.New())

			if err := in.RunString(t.Context(), "test", tt.source); err != nil {
				t.Fatalf("run: %v", err)
			}

			if diff := cmp.Diff(tt.want, mustGet(t, in, "result")); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	in := newInterp(t, platformtest.New())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := in.RunString(ctx, "test", "x = 1")
	if !errors.Is(err, ErrRuntime) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled runtime error, got %v", err)
	}
}

func TestMessages(t *testing.T) {
	rt := platformtest.New()
	in := newInterp(t, rt)

	mustExec(t, in, "message('a', 1, [true])")
	mustExec(t, in, "warning('careful')")

	want := []string{"a 1 [true]", "WARNING: careful"}
	if diff := cmp.Diff(want, rt.Printed); diff != "" {
		t.Errorf("printed mismatch (-want +got):\n%s", diff)
	}
}
