package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/gomeson/lang"
	"github.com/ardnew/gomeson/log"
)

// AST prints the parse tree of a build file.
type AST struct {
	Source string `arg:"" default:"meson.build" help:"Build file or '-' for stdin" name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	r, err := openSource(a.Source)
	if err != nil {
		return err
	}
	defer r.Close()

	ast, err := lang.ParseReader(ctx, r,
		lang.WithName(sourceName(a.Source)),
		lang.WithLogger(log.Default().Named("lang")),
	)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("command", "ast"))
	}

	ast.Print(ctx, outputFrom(ctx))

	return nil
}

// Tokens prints the token stream of a build file, one token per line.
type Tokens struct {
	Source string `arg:"" default:"meson.build" help:"Build file or '-' for stdin" name:"source"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	r, err := openSource(t.Source)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return lang.ErrReadInput.Wrap(err).
			With(slog.String("source", sourceName(t.Source)))
	}

	lang.PrintTokens(outputFrom(ctx), lang.Tokenize(string(data)))

	return nil
}
