package repl

import "github.com/ardnew/gomeson/lang"

// Sentinel errors.
var (
	ErrOutOfBounds  = lang.NewError("index out of range")
	ErrEditDeclined = lang.NewError("decline edit")
	ErrNoInterp     = lang.NewError("no interpreter")
)
