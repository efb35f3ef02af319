package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Sentinel errors. Compare with [errors.Is].
var (
	ErrUnexpectedToken = NewError("unexpected token")
	ErrReadInput       = NewError("failed to read input")
)

// Error is a sentinel message with an optional cause and the attributes of
// the failed operation. Logged with slog, it expands to a group.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel Error.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError returns err as an *Error, wrapping it if it is not one already.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error returns "msg: cause", or whichever of the two is set.
func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is a sentinel with the same message as e.
// Errors derived from a sentinel with [Error.Wrap] or [Error.With] match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg != "" && t.msg == e.msg
}

// Message returns the base message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

// LogValue groups the message, the cause text and the attributes.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e caused by err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e carrying attrs in addition to its own.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{msg: e.msg, err: e.err, attrs: append(slices.Clip(e.attrs), attrs...)}
}

// ParseError reports a token the grammar does not allow. The parse is
// abandoned; no partial AST is produced.
type ParseError struct {
	Token    Token
	Expected string // optional description of what was allowed
	Name     string // source name, if known
	Source   string // source text, for the context line
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString("parse error")

	if e.Name != "" {
		buf.WriteString(" in ")
		buf.WriteString(e.Name)
	}

	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(e.Token.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Token.Pos.Column))
	buf.WriteString(": unexpected ")
	buf.WriteString(e.Token.String())

	if e.Expected != "" {
		buf.WriteString(", expected ")
		buf.WriteString(e.Expected)
	}

	if snippet := e.snippet(); snippet != "" {
		buf.WriteRune('\n')
		buf.WriteString(snippet)
	}

	return buf.String()
}

// Unwrap returns [ErrUnexpectedToken].
func (e *ParseError) Unwrap() error { return ErrUnexpectedToken }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrUnexpectedToken.msg),
		slog.String("token", e.Token.String()),
		slog.String("expected", e.Expected),
		slog.String("source", e.Name),
		slog.Int("line", e.Token.Pos.Line),
		slog.Int("column", e.Token.Pos.Column),
	)
}

// snippet renders the offending line with a marker under the column.
func (e *ParseError) snippet() string {
	line, col := e.Token.Pos.Line, e.Token.Pos.Column

	lines := strings.Split(e.Source, "\n")
	if e.Source == "" || line < 1 || line > len(lines) {
		return ""
	}

	var src strings.Builder

	lineNum := strconv.Itoa(line)

	src.WriteString("  ")
	src.WriteString(lineNum)
	src.WriteString(" | ")
	src.WriteString(strings.TrimRight(lines[line-1], "\r"))
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(lineNum)+5)

	if col > 0 {
		padding += strings.Repeat(" ", col-1)
	}

	src.WriteString(padding + "^")

	return src.String()
}
