package lang

//go:generate go tool stringer --linecomment --type Kind --output token_string.go

import (
	"maps"
	"slices"
	"strconv"
)

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	EOF        Kind = iota // end of file
	Newline                // newline
	String                 // string
	FString                // format string
	Integer                // integer
	Identifier             // identifier

	True       // true
	False      // false
	If         // if
	Elif       // elif
	Else       // else
	Endif      // endif
	Foreach    // foreach
	Endforeach // endforeach
	Break      // break
	Continue   // continue
	And        // and
	Or         // or
	Not        // not
	In         // in

	Plus      // +
	AddAssign // +=
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Eq        // ==
	Assign    // =
	Ne        // !=
	Lt        // <
	Le        // <=
	Gt        // >
	Ge        // >=
	Question  // ?
	Colon     // :
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	LBrace    // {
	RBrace    // }
	Comma     // ,
	Dot       // .
)

var keywords = map[string]Kind{
	"true":       True,
	"false":      False,
	"if":         If,
	"elif":       Elif,
	"else":       Else,
	"endif":      Endif,
	"foreach":    Foreach,
	"endforeach": Endforeach,
	"break":      Break,
	"continue":   Continue,
	"and":        And,
	"or":         Or,
	"not":        Not,
	"in":         In,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string { return slices.Sorted(maps.Keys(keywords)) }

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k >= True && k <= In }

// Position is a location in source text. Line and Column are 1-based;
// Column counts characters, not bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a single lexical element.
//
// Text holds the decoded content of string and format string literals and
// the name of identifiers. Int holds the value of integer literals.
type Token struct {
	Kind Kind
	Text string
	Int  int64
	Pos  Position
}

// String returns a short description of t suitable for error messages.
func (t Token) String() string {
	switch t.Kind {
	case String, FString:
		return t.Kind.String() + " " + strconv.Quote(t.Text)
	case Integer:
		return strconv.FormatInt(t.Int, 10)
	case Identifier:
		return t.Kind.String() + " " + strconv.Quote(t.Text)
	case EOF, Newline:
		return t.Kind.String()
	default:
		return strconv.Quote(t.Kind.String())
	}
}
