package repl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  functionCall
	}{
		{"no call", "greeting", functionCall{}},
		{"first arg", "files(", functionCall{name: "files", inCall: true}},
		{"second arg", "files('a', ", functionCall{name: "files", argIndex: 1, inCall: true}},
		{"closed call", "files('a')", functionCall{}},
		{
			"nested call",
			"files(join_paths('a', ",
			functionCall{name: "join_paths", argIndex: 1, inCall: true},
		},
		{
			"after nested call",
			"files(join_paths('a', 'b'), ",
			functionCall{name: "files", argIndex: 1, inCall: true},
		},
		{
			"comma in string",
			"message('a, b', ",
			functionCall{name: "message", argIndex: 1, inCall: true},
		},
		{
			"paren in string",
			"message('(', ",
			functionCall{name: "message", argIndex: 1, inCall: true},
		},
		{"inside array", "files(['a', ", functionCall{}},
		{
			"keyword",
			"project('x', 'c', version: ",
			functionCall{name: "project", argIndex: 2, keyword: "version", inCall: true},
		},
		{
			"after keyword",
			"project('x', version: '1', ",
			functionCall{name: "project", argIndex: 1, inCall: true},
		},
		{
			"method",
			"cc.has_header(",
			functionCall{name: "has_header", receiver: "cc", method: true, inCall: true},
		},
		{
			"method on call result",
			"meson.get_compiler('c').get_id(",
			functionCall{name: "get_id", method: true, inCall: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, len(tt.input))
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(functionCall{})); diff != "" {
				t.Errorf("detectFunctionCall(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	in := newInterp(t)

	tests := []struct {
		name       string
		fc         functionCall
		wantName   string
		wantParams []string
	}{
		{
			name:       "builtin",
			fc:         functionCall{name: "get_option"},
			wantName:   "get_option",
			wantParams: []string{"name"},
		},
		{
			name:     "method on variable",
			fc:       functionCall{name: "project_name", receiver: "meson", method: true},
			wantName: "Meson.project_name",
		},
		{name: "unknown function", fc: functionCall{name: "nope"}},
		{name: "unknown receiver", fc: functionCall{name: "x", receiver: "nope", method: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, params := getSignature(in, tt.fc)
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}

			if diff := cmp.Diff(tt.wantParams, params); diff != "" {
				t.Errorf("params mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	params := signatures["project"]

	tests := []struct {
		name string
		fc   functionCall
		want string
	}{
		{"first positional", functionCall{argIndex: 0}, "name"},
		{"variadic", functionCall{argIndex: 1}, "language..."},
		{"variadic later", functionCall{argIndex: 4}, "language..."},
		{"keyword", functionCall{argIndex: 2, keyword: "version"}, "version:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint("project", params, tt.fc)

			if !strings.Contains(got, styles.sigParam.Render(tt.want)) {
				t.Errorf("hint %q does not highlight %q", got, tt.want)
			}

			for _, p := range params {
				if !strings.Contains(got, p) {
					t.Errorf("hint %q missing %q", got, p)
				}
			}
		})
	}

	if got := renderSignatureHint("", nil, functionCall{}); got != "" {
		t.Errorf("empty name rendered %q", got)
	}
}
