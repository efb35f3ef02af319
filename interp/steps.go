package interp

import "context"

// Steps receives the build description as the interpreter resolves it. A
// backend turns these notifications into build rules, files on disk, or a
// serialized description.
type Steps interface {
	BuildStaticLibrary(ctx context.Context, target *BuildTarget) error
	BuildExecutable(ctx context.Context, target *BuildTarget) error
	ConfigureFile(ctx context.Context, file *ConfiguredFile) error
	InstallHeaders(ctx context.Context, installDir string, headers []string) error
}

// Discard is a [Steps] that ignores every notification.
type Discard struct{}

func (Discard) BuildStaticLibrary(context.Context, *BuildTarget) error { return nil }
func (Discard) BuildExecutable(context.Context, *BuildTarget) error    { return nil }
func (Discard) ConfigureFile(context.Context, *ConfiguredFile) error   { return nil }
func (Discard) InstallHeaders(context.Context, string, []string) error { return nil }
