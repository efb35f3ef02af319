// Package platform defines the boundary between the interpreter and the
// operating system it configures builds for.
//
// The interpreter never touches the filesystem, the environment, or child
// processes directly. Every such effect goes through a [Runtime], so scripts
// can be evaluated against the real host (package host) or against a fake in
// tests.
package platform

import (
	"context"
	"strings"

	"github.com/ardnew/gomeson/lang"
)

// Predefined errors (sentinel values).
var (
	ErrUnsupportedLanguage = lang.NewError("unsupported language")
	ErrProgramNotFound     = lang.NewError("program not found")
)

// Machine describes a build, host, or target machine.
type Machine struct {
	System    string `json:"system"     yaml:"system"`
	CPUFamily string `json:"cpu_family" yaml:"cpu_family"`
	CPU       string `json:"cpu"        yaml:"cpu"`
	Endian    string `json:"endian"     yaml:"endian"`
}

// Compiler is a compiler invocation: the command (argv0 and any fixed
// leading arguments) and the default flags appended after it.
type Compiler struct {
	Command []string `json:"command"         yaml:"command"`
	Flags   []string `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Argv returns the command followed by the default flags.
func (c Compiler) Argv() []string {
	argv := make([]string, 0, len(c.Command)+len(c.Flags))

	return append(append(argv, c.Command...), c.Flags...)
}

// CommandOutput is the captured result of a finished child process.
type CommandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// TempDir is a scoped temporary directory. Close removes it and everything
// inside it.
type TempDir interface {
	Path() string
	Close() error
}

// Runtime is everything the interpreter needs from the operating system.
//
// Blocking operations take a context. Paths use '/' separators.
type Runtime interface {
	Print(msg string)
	Getenv(key string) (string, bool)

	BuildMachine() (Machine, error)
	HostMachine() (Machine, error)
	DefaultPrefix() (string, error)

	IsFile(path string) (bool, error)
	IsDir(path string) (bool, error)
	Exists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	TempDir() (TempDir, error)

	// Compiler returns the invocation for a language. Unsupported languages
	// fail with [ErrUnsupportedLanguage].
	Compiler(lang string) (Compiler, error)

	// FindProgram resolves a program name to an absolute path. It fails with
	// [ErrProgramNotFound] when nothing matches.
	FindProgram(ctx context.Context, name, cwd string) (string, error)

	RunCommand(
		ctx context.Context,
		argv0 string,
		args ...string,
	) (CommandOutput, error)

	JoinPaths(parts ...string) string

	// Glob returns the paths under dir matching a doublestar pattern,
	// relative to dir.
	Glob(dir, pattern string) ([]string, error)
}

// JoinPaths joins path elements the way build scripts expect: an absolute
// element (or an empty accumulated path) replaces everything before it,
// otherwise elements are joined with a single '/'. Backslashes are treated
// as separators.
func JoinPaths(parts ...string) string {
	var path string

	for _, p := range parts {
		p = strings.ReplaceAll(p, `\`, "/")

		switch {
		case strings.HasPrefix(p, "/") || path == "":
			path = p
		default:
			path = strings.TrimRight(path, "/") + "/" + p
		}
	}

	return path
}
