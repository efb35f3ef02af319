package interp

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ardnew/gomeson/lang"
)

// Predefined errors (sentinel values). Every evaluation failure matches
// exactly one of them with [errors.Is].
var (
	ErrUndefinedVariable = lang.NewError("Undefined variable")
	ErrUndefinedFunction = lang.NewError("Undefined function")
	ErrType              = lang.NewError("Type error")
	ErrRuntime           = lang.NewError("Runtime error")
)

func undefinedVariable(name string) error {
	return ErrUndefinedVariable.Wrap(errors.New(name)).
		With(slog.String("name", name))
}

func undefinedFunction(name string) error {
	return ErrUndefinedFunction.Wrap(errors.New(name)).
		With(slog.String("name", name))
}

func typeErrorf(format string, args ...any) error {
	return ErrType.Wrap(fmt.Errorf(format, args...))
}

func runtimeErrorf(format string, args ...any) error {
	return ErrRuntime.Wrap(fmt.Errorf(format, args...))
}

// ScriptError locates an evaluation error in a script. When scripts nest
// through subdir, the innermost location is kept.
type ScriptError struct {
	File string
	Pos  lang.Position
	Err  error
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<input>"
	}

	if e.Pos.Line > 0 {
		loc += ":" + strconv.Itoa(e.Pos.Line) + ":" + strconv.Itoa(e.Pos.Column)
	}

	return loc + ": " + e.Err.Error()
}

// Unwrap returns the located error.
func (e *ScriptError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *ScriptError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("file", e.File),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
		slog.Any("error", e.Err),
	)
}

// locate attaches a script location to err unless it already has one.
func locate(err error, file string, pos lang.Position) error {
	if err == nil {
		return nil
	}

	var se *ScriptError
	if errors.As(err, &se) {
		return err
	}

	var pe *lang.ParseError
	if errors.As(err, &pe) {
		return err
	}

	return &ScriptError{File: file, Pos: pos, Err: err}
}
