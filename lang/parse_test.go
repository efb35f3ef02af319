package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignorePos = cmp.Options{cmpopts.IgnoreTypes(Position{}), cmpopts.EquateEmpty()}

func id(name string) *Ident           { return &Ident{Name: name} }
func lit(s string) *StringLit         { return &StringLit{Value: s} }
func intLit(n int64) *IntegerLit      { return &IntegerLit{Value: n} }
func bin(op Operator, l, r Expr) Expr { return &BinaryOp{Op: op, Left: l, Right: r} }

func TestParseString_Statements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Stmt
	}{
		{
			name:  "assignment",
			input: "x = 1\n",
			want:  []Stmt{&AssignStmt{Name: "x", Value: intLit(1)}},
		},
		{
			name:  "add assignment",
			input: "x += ['a']",
			want: []Stmt{&AddAssignStmt{
				Name: "x", Value: &ArrayLit{Elements: []Expr{lit("a")}},
			}},
		},
		{
			name:  "leading blank lines and comments",
			input: "\n\n# header\n\nx = 1\n\n",
			want:  []Stmt{&AssignStmt{Name: "x", Value: intLit(1)}},
		},
		{
			name:  "expression statement",
			input: "message('hi')",
			want: []Stmt{&ExprStmt{Expr: &FunctionCall{
				Name: "message", Args: []Expr{lit("hi")},
			}}},
		},
		{
			name:  "non-identifier left side is an expression",
			input: "a.b()",
			want: []Stmt{&ExprStmt{Expr: &MethodCall{
				Receiver: id("a"), Name: "b", Args: []Expr{},
			}}},
		},
		{
			name:  "if elif else",
			input: "if a\n x = 1\nelif b\n x = 2\nelse\n x = 3\nendif\n",
			want: []Stmt{&IfStmt{
				Branches: []Branch{
					{Cond: id("a"), Body: []Stmt{&AssignStmt{Name: "x", Value: intLit(1)}}},
					{Cond: id("b"), Body: []Stmt{&AssignStmt{Name: "x", Value: intLit(2)}}},
				},
				Else: []Stmt{&AssignStmt{Name: "x", Value: intLit(3)}},
			}},
		},
		{
			name:  "empty if",
			input: "if true\nendif",
			want: []Stmt{&IfStmt{Branches: []Branch{
				{Cond: &BooleanLit{Value: true}, Body: []Stmt{}},
			}}},
		},
		{
			name:  "foreach with break and continue",
			input: "foreach x : xs\n  if x\n    break\n  endif\n  continue\nendforeach\n",
			want: []Stmt{&ForeachStmt{
				Var:      "x",
				Iterable: id("xs"),
				Body: []Stmt{
					&IfStmt{Branches: []Branch{
						{Cond: id("x"), Body: []Stmt{&BreakStmt{}}},
					}},
					&ContinueStmt{},
				},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := ParseString(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if diff := cmp.Diff(tt.want, ast.Statements, ignorePos); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseExpression_Precedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{
			name:  "multiplication binds tighter",
			input: "1 + 2 * 3",
			want:  bin(OpAdd, intLit(1), bin(OpMul, intLit(2), intLit(3))),
		},
		{
			name:  "left associative",
			input: "1 - 2 - 3",
			want:  bin(OpSub, bin(OpSub, intLit(1), intLit(2)), intLit(3)),
		},
		{
			name:  "and binds tighter than or",
			input: "a or b and c",
			want:  bin(OpOr, id("a"), bin(OpAnd, id("b"), id("c"))),
		},
		{
			name:  "in binds looser than equality",
			input: "a == b in c",
			want:  bin(OpIn, bin(OpEq, id("a"), id("b")), id("c")),
		},
		{
			name:  "not in",
			input: "'x' not in xs",
			want:  bin(OpNotIn, lit("x"), id("xs")),
		},
		{
			name:  "unary chain",
			input: "not -a",
			want: &UnaryOp{Op: OpNot, Operand: &UnaryOp{
				Op: OpNeg, Operand: id("a"),
			}},
		},
		{
			name:  "ternary is lowest",
			input: "a or b ? 1 : 2",
			want: &Ternary{
				Cond: bin(OpOr, id("a"), id("b")),
				Then: intLit(1),
				Else: intLit(2),
			},
		},
		{
			name:  "parentheses",
			input: "(1 + 2) * 3",
			want:  bin(OpMul, bin(OpAdd, intLit(1), intLit(2)), intLit(3)),
		},
		{
			name:  "path division",
			input: "'a' / 'b'",
			want:  bin(OpDiv, lit("a"), lit("b")),
		},
		{
			name:  "operator continues on next line",
			input: "a +\n  b",
			want:  bin(OpAdd, id("a"), id("b")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpression(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if diff := cmp.Diff(tt.want, got, ignorePos); diff != "" {
				t.Errorf("expression mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseExpression_Postfix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{
			name:  "call with kwargs",
			input: "executable('app', 'a.c', install: true,)",
			want: &FunctionCall{
				Name: "executable",
				Args: []Expr{lit("app"), lit("a.c")},
				Kwargs: []Kwarg{
					{Name: "install", Value: &BooleanLit{Value: true}},
				},
			},
		},
		{
			name:  "member access without parens",
			input: "meson.version",
			want:  &MethodCall{Receiver: id("meson"), Name: "version"},
		},
		{
			name:  "method chain",
			input: "'a-b'.split('-')[0].to_upper()",
			want: &MethodCall{
				Receiver: &Subscript{
					Target: &MethodCall{
						Receiver: lit("a-b"),
						Name:     "split",
						Args:     []Expr{lit("-")},
					},
					Index: intLit(0),
				},
				Name: "to_upper",
				Args: []Expr{},
			},
		},
		{
			name:  "dict literal with mixed keys and trailing comma",
			input: "{'a': 1, b: 2, f'c': 3, 'a': 4,}",
			want: &DictLit{Entries: []DictEntry{
				{Key: "a", Value: intLit(4)},
				{Key: "b", Value: intLit(2)},
				{Key: "c", Value: intLit(3)},
			}},
		},
		{
			name:  "multiline array",
			input: "[\n  'a',\n  'b',\n]",
			want:  &ArrayLit{Elements: []Expr{lit("a"), lit("b")}},
		},
		{
			name:  "repeated kwarg keeps last",
			input: "f(x: 1, x: 2)",
			want: &FunctionCall{
				Name:   "f",
				Args:   []Expr{},
				Kwargs: []Kwarg{{Name: "x", Value: intLit(2)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpression(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if diff := cmp.Diff(tt.want, got, ignorePos); diff != "" {
				t.Errorf("expression mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     int
		column   int
		expected string
	}{
		{
			name:   "positional after keyword",
			input:  "f(a: 1, 2)",
			line:   1,
			column: 9,
		},
		{
			name:   "call on non-identifier",
			input:  "'a'(1)",
			line:   1,
			column: 4,
		},
		{
			name:   "two statements on one line",
			input:  "a = 1 b = 2",
			line:   1,
			column: 7,
		},
		{
			name:     "missing endif",
			input:    "if a\n  b = 1\n",
			line:     3,
			column:   1,
			expected: "endif",
		},
		{
			name:     "unclosed paren",
			input:    "f(1",
			line:     1,
			column:   4,
			expected: ")",
		},
		{
			name:   "stray operator",
			input:  "x = * 2",
			line:   1,
			column: 5,
		},
		{
			name:   "foreach needs identifier",
			input:  "foreach 1 : xs\nendforeach",
			line:   1,
			column: 9,
		},
		{
			name:   "statement after endif on same line",
			input:  "if a\nendif x = 1",
			line:   2,
			column: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ast, err := ParseString(t.Context(), tt.input, WithName("meson.build"))
			if err == nil {
				t.Fatalf("expected error, got %d statements", len(ast.Statements))
			}

			if !errors.Is(err, ErrUnexpectedToken) {
				t.Errorf("expected ErrUnexpectedToken, got %v", err)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}

			if pe.Token.Pos.Line != tt.line || pe.Token.Pos.Column != tt.column {
				t.Errorf("error at %s, want %d:%d", pe.Token.Pos, tt.line, tt.column)
			}

			if tt.expected != "" && pe.Expected != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, pe.Expected)
			}

			if !strings.Contains(err.Error(), "meson.build") {
				t.Errorf("error should name the source: %v", err)
			}
		})
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := ParseString(t.Context(), "x = 1\ny = (2\n")
	if err == nil {
		t.Fatal("expected error")
	}

	want := "parse error at line 3, column 1: unexpected end of file, expected )"
	if got := err.Error(); !strings.HasPrefix(got, want) {
		t.Errorf("got %q, want prefix %q", got, want)
	}

	_, err = ParseString(t.Context(), "a = [1,, 2]")
	if err == nil {
		t.Fatal("expected error")
	}

	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", err.Error())
	}

	if lines[1] != "  1 | a = [1,, 2]" {
		t.Errorf("context line = %q", lines[1])
	}

	if lines[2] != strings.Repeat(" ", 6)+strings.Repeat(" ", 7)+"^" {
		t.Errorf("marker line = %q", lines[2])
	}
}
