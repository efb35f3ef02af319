package cmd

import (
	"context"

	"github.com/ardnew/gomeson/backend"
)

// Introspect configures a project without reporting progress and prints
// the resulting build description.
type Introspect struct {
	Project `embed:""`

	Format string `default:"yaml" enum:"yaml,json" help:"Output format"              short:"o"`
	Indent int    `default:"2"                     help:"Indent width (0 for compact)" short:"i"`
	Where  string `                                help:"Keep targets matching an expression, e.g. 'kind == \"executable\"'"`
	Glob   string `                                help:"Keep only sources matching a doublestar pattern"`
}

// Run executes the introspect command.
func (i *Introspect) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	rec := &backend.Recorder{}

	in, _, err := i.configure(WithOutput(ctx, discard{}), rec)
	if err != nil {
		return err
	}

	d, err := backend.Filter{Where: i.Where, Glob: i.Glob}.Apply(rec.Describe(in))
	if err != nil {
		return ErrFilter.Wrap(err)
	}

	out := outputFrom(ctx)

	if i.Format == "json" {
		if err := d.WriteJSON(ctx, out, i.Indent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil
	}

	if err := d.WriteYAML(ctx, out, i.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// discard swallows script output so only the description is printed.
type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
