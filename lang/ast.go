package lang

import (
	"iter"

	"github.com/ardnew/gomeson/log"
)

// AST is a parsed build script: an ordered sequence of statements.
type AST struct {
	Statements []Stmt
	name       string     // source name used in diagnostics
	logger     log.Logger // structured logger (outside the cache key)
}

// Name returns the source name the AST was parsed with.
func (ast *AST) Name() string { return ast.name }

// All returns an iterator over the top-level statements.
func (ast *AST) All() iter.Seq[Stmt] {
	return func(yield func(Stmt) bool) {
		for _, s := range ast.Statements {
			if !yield(s) {
				return
			}
		}
	}
}

// Option configures parsing behavior.
type Option func(*AST)

// WithLogger sets the logger used to trace parsing.
func WithLogger(logger log.Logger) Option {
	return func(ast *AST) {
		ast.logger = logger
	}
}

// WithName sets the source name reported in parse errors, typically a file
// path.
func WithName(name string) Option {
	return func(ast *AST) {
		ast.name = name
	}
}

func applyOptions(ast *AST, opts ...Option) {
	for _, opt := range opts {
		opt(ast)
	}
}

// Node is implemented by every expression and statement.
type Node interface {
	Position() Position
}

// Expr is an expression node.
type Expr interface {
	Node
	expr()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmt()
}

// Operator identifies a unary or binary operation.
type Operator int

const (
	OpAdd   Operator = iota // +
	OpSub                   // -
	OpMul                   // *
	OpDiv                   // /
	OpMod                   // %
	OpEq                    // ==
	OpNe                    // !=
	OpLt                    // <
	OpLe                    // <=
	OpGt                    // >
	OpGe                    // >=
	OpAnd                   // and
	OpOr                    // or
	OpIn                    // in
	OpNotIn                 // not in
	OpNot                   // not
	OpNeg                   // -
)

var operatorText = [...]string{
	OpAdd:   "+",
	OpSub:   "-",
	OpMul:   "*",
	OpDiv:   "/",
	OpMod:   "%",
	OpEq:    "==",
	OpNe:    "!=",
	OpLt:    "<",
	OpLe:    "<=",
	OpGt:    ">",
	OpGe:    ">=",
	OpAnd:   "and",
	OpOr:    "or",
	OpIn:    "in",
	OpNotIn: "not in",
	OpNot:   "not",
	OpNeg:   "-",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorText) {
		return "?"
	}

	return operatorText[op]
}

var binaryOperator = map[Kind]Operator{
	Plus:    OpAdd,
	Minus:   OpSub,
	Star:    OpMul,
	Slash:   OpDiv,
	Percent: OpMod,
	Eq:      OpEq,
	Ne:      OpNe,
	Lt:      OpLt,
	Le:      OpLe,
	Gt:      OpGt,
	Ge:      OpGe,
	And:     OpAnd,
	Or:      OpOr,
}

// Kwarg is a named argument. Named arguments keep source order.
type Kwarg struct {
	Name  string
	Value Expr
}

// DictEntry is a key-value pair of a dict literal.
type DictEntry struct {
	Key   string
	Value Expr
}

type (
	// StringLit is a string literal.
	StringLit struct {
		Value string
		Pos   Position
	}

	// FStringLit is a format string literal. Its @name@ placeholders are
	// resolved at evaluation time.
	FStringLit struct {
		Value string
		Pos   Position
	}

	IntegerLit struct {
		Value int64
		Pos   Position
	}

	BooleanLit struct {
		Value bool
		Pos   Position
	}

	// Ident is a variable reference.
	Ident struct {
		Name string
		Pos  Position
	}

	ArrayLit struct {
		Elements []Expr
		Pos      Position
	}

	// DictLit is a dict literal. Entries hold distinct keys in first-seen
	// order; a repeated key replaces the earlier value.
	DictLit struct {
		Entries []DictEntry
		Pos     Position
	}

	// FunctionCall invokes a builtin function by name.
	FunctionCall struct {
		Name   string
		Args   []Expr
		Kwargs []Kwarg
		Pos    Position
	}

	// MethodCall invokes a method on the value of Receiver. A member access
	// without parentheses is a call with no arguments.
	MethodCall struct {
		Receiver Expr
		Name     string
		Args     []Expr
		Kwargs   []Kwarg
		Pos      Position
	}

	BinaryOp struct {
		Op          Operator
		Left, Right Expr
		Pos         Position
	}

	UnaryOp struct {
		Op      Operator
		Operand Expr
		Pos     Position
	}

	// Subscript indexes Target by Index.
	Subscript struct {
		Target, Index Expr
		Pos           Position
	}

	// Ternary is cond ? Then : Else.
	Ternary struct {
		Cond, Then, Else Expr
		Pos              Position
	}
)

func (e *StringLit) Position() Position    { return e.Pos }
func (e *FStringLit) Position() Position   { return e.Pos }
func (e *IntegerLit) Position() Position   { return e.Pos }
func (e *BooleanLit) Position() Position   { return e.Pos }
func (e *Ident) Position() Position        { return e.Pos }
func (e *ArrayLit) Position() Position     { return e.Pos }
func (e *DictLit) Position() Position      { return e.Pos }
func (e *FunctionCall) Position() Position { return e.Pos }
func (e *MethodCall) Position() Position   { return e.Pos }
func (e *BinaryOp) Position() Position     { return e.Pos }
func (e *UnaryOp) Position() Position      { return e.Pos }
func (e *Subscript) Position() Position    { return e.Pos }
func (e *Ternary) Position() Position      { return e.Pos }

func (*StringLit) expr()    {}
func (*FStringLit) expr()   {}
func (*IntegerLit) expr()   {}
func (*BooleanLit) expr()   {}
func (*Ident) expr()        {}
func (*ArrayLit) expr()     {}
func (*DictLit) expr()      {}
func (*FunctionCall) expr() {}
func (*MethodCall) expr()   {}
func (*BinaryOp) expr()     {}
func (*UnaryOp) expr()      {}
func (*Subscript) expr()    {}
func (*Ternary) expr()      {}

// Branch is one conditional arm of an if statement.
type Branch struct {
	Cond Expr
	Body []Stmt
}

type (
	// AssignStmt is name = value.
	AssignStmt struct {
		Name  string
		Value Expr
		Pos   Position
	}

	// AddAssignStmt is name += value.
	AddAssignStmt struct {
		Name  string
		Value Expr
		Pos   Position
	}

	// ExprStmt is an expression evaluated for its effects.
	ExprStmt struct {
		Expr Expr
	}

	// IfStmt holds the if branch followed by any elif branches. Else is nil
	// when there is no else clause.
	IfStmt struct {
		Branches []Branch
		Else     []Stmt
		Pos      Position
	}

	ForeachStmt struct {
		Var      string
		Iterable Expr
		Body     []Stmt
		Pos      Position
	}

	BreakStmt struct {
		Pos Position
	}

	ContinueStmt struct {
		Pos Position
	}
)

func (s *AssignStmt) Position() Position    { return s.Pos }
func (s *AddAssignStmt) Position() Position { return s.Pos }
func (s *ExprStmt) Position() Position      { return s.Expr.Position() }
func (s *IfStmt) Position() Position        { return s.Pos }
func (s *ForeachStmt) Position() Position   { return s.Pos }
func (s *BreakStmt) Position() Position     { return s.Pos }
func (s *ContinueStmt) Position() Position  { return s.Pos }

func (*AssignStmt) stmt()    {}
func (*AddAssignStmt) stmt() {}
func (*ExprStmt) stmt()      {}
func (*IfStmt) stmt()        {}
func (*ForeachStmt) stmt()   {}
func (*BreakStmt) stmt()     {}
func (*ContinueStmt) stmt()  {}
