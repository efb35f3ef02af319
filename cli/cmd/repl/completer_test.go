package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/gomeson/interp"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"method", "cc.get_id", 9, "get_id", 3, 9},
		{"after plus", "a + fo", 6, "fo", 4, 6},
		{"after minus", "a-fo", 4, "fo", 2, 4},
		{"after paren", "message(fo", 10, "fo", 8, 10},
		{"after comma", "files(a, fo", 11, "fo", 9, 11},
		{"after keyword colon", "project('x', version:ve", 23, "ve", 21, 23},
		{"in ternary", "x ? fo", 6, "fo", 4, 6},
		{"inside string", "'abc", 4, "abc", 1, 4},
		{"empty at boundary", "a + ", 4, "", 4, 4},
		{"mid word", "foobar", 3, "foobar", 0, 6},
		{"at start", "foo", 0, "foo", 0, 3},
		{"empty after dot", "meson.", 6, "", 6, 6},
		{"cursor past end", "foo", 10, "foo", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top level", "fo", 0, ""},
		{"variable", "cc.", 3, "cc"},
		{"after operator", "x + cc.", 7, "cc"},
		{"after paren", "message(meson.", 14, "meson"},
		{"chain", "a.b.", 4, "a.b"},
		{"not after dot", "a + ", 4, ""},
		{"after assignment", "x = meson.", 10, "meson"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestChildCandidates(t *testing.T) {
	in := newInterp(t)
	in.Set("name", interp.String("demo"))

	top := childCandidates(in, "")
	for _, want := range []string{"project", "message", "meson", "name", "foreach"} {
		if !slices.Contains(top, want) {
			t.Errorf("top-level candidates missing %q", want)
		}
	}

	meson := childCandidates(in, "meson")
	for _, want := range []string{"project_name", "get_compiler", "to_string"} {
		if !slices.Contains(meson, want) {
			t.Errorf("meson candidates missing %q: %v", want, meson)
		}
	}

	if !slices.Contains(childCandidates(in, "name"), "split") {
		t.Error("string candidates missing split")
	}

	if got := childCandidates(in, "missing"); got != nil {
		t.Errorf("unknown variable candidates = %v", got)
	}

	if got := childCandidates(in, "meson.build_root"); got != nil {
		t.Errorf("chained candidates = %v", got)
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		in   interp.Value
		want string
	}{
		{interp.String("it's"), `'it\'s'`},
		{interp.Integer(3), "3"},
		{interp.Boolean(true), "true"},
		{interp.Array{interp.String("a"), interp.Integer(1)}, "['a', 1]"},
		{interp.Dict{"b": interp.Integer(2), "a": interp.String("x")}, "{'a': 'x', 'b': 2}"},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, display(tt.in)); diff != "" {
			t.Errorf("display(%#v) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Matches{{Str: "alpha"}, {Str: "beta"}, {Str: "gamma"}}
	more := styles.hint.Render("...")

	full := renderCandidateBar(matches, -1, 18)
	if w := lipgloss.Width(full); w != 18 || strings.Contains(full, more) {
		t.Errorf("width 18: got width %d %q", w, full)
	}

	cut := renderCandidateBar(matches, 1, 14)
	if w := lipgloss.Width(cut); w > 14 || !strings.HasSuffix(cut, more) {
		t.Errorf("width 14: got width %d %q", w, cut)
	}

	if renderCandidateBar(nil, -1, 80) != "" || renderCandidateBar(matches, -1, 0) != "" {
		t.Error("expected empty bar")
	}
}
