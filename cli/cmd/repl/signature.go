package repl

import (
	"strings"

	"github.com/ardnew/gomeson/interp"
)

// signatures lists the parameters of the builtin functions. Keyword
// parameters end with ':' and variadic ones with "...".
var signatures = map[string][]string{
	"add_global_arguments":  {"arg...", "language:"},
	"add_languages":         {"language...", "required:"},
	"add_project_arguments": {"arg...", "language:"},
	"assert":                {"condition", "message"},
	"configuration_data":    {"values"},
	"configure_file":        {"input:", "output:", "configuration:", "install:", "install_dir:"},
	"environment":           {"values"},
	"error":                 {"message..."},
	"executable":            {"name", "source...", "include_directories:", "c_args:", "objects:", "install:", "install_dir:"},
	"files":                 {"file..."},
	"find_program":          {"name...", "required:", "dirs:"},
	"get_option":            {"name"},
	"get_variable":          {"name", "fallback"},
	"import":                {"module"},
	"include_directories":   {"dir..."},
	"install_headers":       {"file...", "install_dir:", "subdir:"},
	"is_variable":           {"name"},
	"join_paths":            {"part..."},
	"message":               {"text..."},
	"option":                {"name", "type:", "value:", "choices:", "min:", "max:", "description:"},
	"project":               {"name", "language...", "version:", "license:", "meson_version:", "default_options:"},
	"run_command":           {"command...", "check:", "env:"},
	"set_variable":          {"name", "value"},
	"static_library":        {"name", "source...", "include_directories:", "c_args:", "objects:", "install:", "install_dir:"},
	"subdir":                {"dir"},
	"warning":               {"text..."},
}

// functionCall describes the call whose argument list holds the cursor.
type functionCall struct {
	name     string // function or method name
	receiver string // variable a method is called on, if any
	method   bool
	argIndex int    // positional arguments before the cursor
	keyword  string // keyword of the argument at the cursor, if any
	inCall   bool
}

type frame struct {
	open     int
	call     bool
	args     int
	segStart int
}

// detectFunctionCall finds the innermost call enclosing cursor. Brackets
// inside string literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	var (
		stack   []frame
		quoted  bool
		escaped bool
	)

	for i := 0; i < cursor; i++ {
		ch := input[i]

		if quoted {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '\'':
				quoted = false
			}

			continue
		}

		switch ch {
		case '\'':
			quoted = true
		case '(', '[', '{':
			stack = append(stack, frame{open: i, call: ch == '(', segStart: i + 1})
		case ')', ']', '}':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if n := len(stack); n > 0 {
				if kw, _ := keywordOf(input[stack[n-1].segStart:i]); kw == "" {
					stack[n-1].args++
				}

				stack[n-1].segStart = i + 1
			}
		}
	}

	if len(stack) == 0 || !stack[len(stack)-1].call {
		return functionCall{}
	}

	top := stack[len(stack)-1]

	start := top.open
	for start > 0 && (isIdentByte(input[start-1]) || input[start-1] == '.') {
		start--
	}

	chain := input[start:top.open]
	if chain == "" || strings.HasSuffix(chain, ".") {
		return functionCall{}
	}

	fc := functionCall{name: chain, argIndex: top.args, inCall: true}

	if i := strings.LastIndexByte(chain, '.'); i >= 0 {
		fc.method = true
		fc.name = chain[i+1:]
		fc.receiver = chain[:i]
	}

	fc.keyword, _ = keywordOf(input[top.segStart:cursor])

	return fc
}

// keywordOf returns the keyword of an argument written as "name: value".
func keywordOf(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)

	i := strings.IndexByte(arg, ':')
	if i <= 0 {
		return "", false
	}

	name := strings.TrimSpace(arg[:i])
	for j := range len(name) {
		if !isIdentByte(name[j]) {
			return "", false
		}
	}

	return name, true
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// getSignature returns the display name and parameters of the call. Methods
// report the receiver's kind when the receiver is a variable.
func getSignature(in *interp.Interpreter, fc functionCall) (string, []string) {
	if !fc.method {
		params, ok := signatures[fc.name]
		if !ok {
			return "", nil
		}

		return fc.name, params
	}

	if in == nil || strings.Contains(fc.receiver, ".") {
		return "", nil
	}

	v, ok := in.Get(fc.receiver)
	if !ok {
		return "", nil
	}

	return interp.TypeName(v) + "." + fc.name, nil
}

// renderSignatureHint renders name(params) with the parameter at the cursor
// highlighted. A keyword argument highlights its keyword; otherwise the
// argIndex-th positional parameter, or a variadic one it falls into, is
// highlighted.
func renderSignatureHint(name string, params []string, fc functionCall) string {
	if name == "" {
		return ""
	}

	var b strings.Builder

	b.WriteString(styles.sigName.Render(name))
	b.WriteString(styles.sig.Render("("))

	if params == nil && fc.method {
		b.WriteString(styles.sig.Render("..."))
	}

	positional := 0

	for i, p := range params {
		if i > 0 {
			b.WriteString(styles.sig.Render(", "))
		}

		var current bool

		switch {
		case strings.HasSuffix(p, ":"):
			current = fc.keyword != "" && p == fc.keyword+":"
		case strings.HasSuffix(p, "..."):
			current = fc.keyword == "" && fc.argIndex >= positional
			positional++
		default:
			current = fc.keyword == "" && fc.argIndex == positional
			positional++
		}

		if current {
			b.WriteString(styles.sigParam.Render(p))
		} else {
			b.WriteString(styles.sig.Render(p))
		}
	}

	b.WriteString(styles.sig.Render(")"))

	return b.String()
}
