package cmd

import (
	"context"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/gomeson/log"
	"github.com/ardnew/gomeson/machine"
)

// Machine evaluates a machine file and prints its sections as YAML.
type Machine struct {
	File   string `arg:"" help:"Machine file or '-' for stdin" name:"file"`
	Indent int    `default:"2" help:"Indent width (0 for flow style)" short:"i"`
}

// Run executes the machine command.
func (m *Machine) Run(ctx context.Context) error {
	r, err := openSource(m.File)
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := machine.Parse(ctx, r,
		machine.WithName(sourceName(m.File)),
		machine.WithLogger(log.Default().Named("machine")),
	)
	if err != nil {
		return err
	}

	var opts []yaml.EncodeOption
	if m.Indent > 0 {
		opts = append(opts, yaml.Indent(m.Indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, f, opts...)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err).With(slog.String("file", m.File))
	}

	_, err = outputFrom(ctx).Write(data)

	return err
}
