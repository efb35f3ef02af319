package lang

import (
	"context"
	"io"
	"strconv"
	"strings"
)

// writer returns a function that writes items and an end-of-line string.
func writer(w io.Writer) func(eol string, item ...string) {
	return func(eol string, item ...string) {
		for _, s := range item {
			_, _ = io.WriteString(w, s)
		}

		_, _ = io.WriteString(w, eol)
	}
}

// Print writes an indented tree of the AST to w.
func (ast *AST) Print(ctx context.Context, w io.Writer) {
	ast.PrintIndent(ctx, w, 0)
}

// PrintIndent writes an indented tree of the AST to w, starting at the given
// indentation level.
func (ast *AST) PrintIndent(ctx context.Context, w io.Writer, indent int) {
	printStmts(w, ast.Statements, indent)
}

// PrintTokens writes one token per line with its position.
func PrintTokens(w io.Writer, tokens []Token) {
	put := writer(w)

	for _, tok := range tokens {
		put("\n", tok.Pos.String(), "\t", tok.String())
	}
}

func printStmts(w io.Writer, stmts []Stmt, indent int) {
	for _, s := range stmts {
		printStmt(w, s, indent)
	}
}

func printStmt(w io.Writer, s Stmt, indent int) {
	put := writer(w)
	prefix := strings.Repeat("  ", indent)

	switch s := s.(type) {
	case *AssignStmt:
		put("\n", prefix, "Assign ", s.Name)
		printExpr(w, s.Value, indent+1)
	case *AddAssignStmt:
		put("\n", prefix, "AddAssign ", s.Name)
		printExpr(w, s.Value, indent+1)
	case *ExprStmt:
		printExpr(w, s.Expr, indent)
	case *IfStmt:
		for i, b := range s.Branches {
			label := "If"
			if i > 0 {
				label = "Elif"
			}

			put("\n", prefix, label)
			printExpr(w, b.Cond, indent+2)
			put("\n", prefix, "  Then")
			printStmts(w, b.Body, indent+2)
		}

		if s.Else != nil {
			put("\n", prefix, "Else")
			printStmts(w, s.Else, indent+1)
		}
	case *ForeachStmt:
		put("\n", prefix, "Foreach ", s.Var)
		printExpr(w, s.Iterable, indent+2)
		put("\n", prefix, "  Do")
		printStmts(w, s.Body, indent+2)
	case *BreakStmt:
		put("\n", prefix, "Break")
	case *ContinueStmt:
		put("\n", prefix, "Continue")
	}
}

func printKwargs(w io.Writer, kwargs []Kwarg, indent int) {
	put := writer(w)
	prefix := strings.Repeat("  ", indent)

	for _, kw := range kwargs {
		put("\n", prefix, kw.Name, ":")
		printExpr(w, kw.Value, indent+1)
	}
}

func printExpr(w io.Writer, e Expr, indent int) {
	put := writer(w)
	prefix := strings.Repeat("  ", indent)

	switch e := e.(type) {
	case *StringLit:
		put("\n", prefix, "String ", strconv.Quote(e.Value))
	case *FStringLit:
		put("\n", prefix, "FString ", strconv.Quote(e.Value))
	case *IntegerLit:
		put("\n", prefix, "Integer ", strconv.FormatInt(e.Value, 10))
	case *BooleanLit:
		put("\n", prefix, "Boolean ", strconv.FormatBool(e.Value))
	case *Ident:
		put("\n", prefix, "Identifier ", e.Name)
	case *ArrayLit:
		put("\n", prefix, "Array")

		for _, el := range e.Elements {
			printExpr(w, el, indent+1)
		}
	case *DictLit:
		put("\n", prefix, "Dict")

		for _, entry := range e.Entries {
			put("\n", prefix, "  ", strconv.Quote(entry.Key), ":")
			printExpr(w, entry.Value, indent+2)
		}
	case *FunctionCall:
		put("\n", prefix, "Call ", e.Name)

		for _, arg := range e.Args {
			printExpr(w, arg, indent+1)
		}

		printKwargs(w, e.Kwargs, indent+1)
	case *MethodCall:
		put("\n", prefix, "Method ", e.Name)
		printExpr(w, e.Receiver, indent+2)

		for _, arg := range e.Args {
			printExpr(w, arg, indent+1)
		}

		printKwargs(w, e.Kwargs, indent+1)
	case *BinaryOp:
		put("\n", prefix, "BinaryOp ", e.Op.String())
		printExpr(w, e.Left, indent+1)
		printExpr(w, e.Right, indent+1)
	case *UnaryOp:
		put("\n", prefix, "UnaryOp ", e.Op.String())
		printExpr(w, e.Operand, indent+1)
	case *Subscript:
		put("\n", prefix, "Subscript")
		printExpr(w, e.Target, indent+1)
		printExpr(w, e.Index, indent+1)
	case *Ternary:
		put("\n", prefix, "Ternary")
		printExpr(w, e.Cond, indent+1)
		printExpr(w, e.Then, indent+1)
		printExpr(w, e.Else, indent+1)
	}
}
