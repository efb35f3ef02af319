package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/gomeson/cli/cmd"
	"github.com/ardnew/gomeson/pkg"
)

// CLI is the top-level command-line interface for gomeson.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Setup      cmd.Setup      `cmd:"" default:"withargs" help:"Configure a project"`
	Introspect cmd.Introspect `cmd:""                    help:"Print the build description of a project"`
	AST        cmd.AST        `cmd:"" name:"ast"         help:"Print the parse tree of a build file"`
	Tokens     cmd.Tokens     `cmd:""                    help:"Print the token stream of a build file"`
	Machine    cmd.Machine    `cmd:""                    help:"Print an evaluated machine file"`
	Repl       cmd.Repl       `cmd:""                    help:"Start an interactive interpreter"`
	Init       cmd.Init       `cmd:""                    help:"Initialize configuration file"`
	Version    cmd.Version    `cmd:""                    help:"Print version information"`
}

// parser returns the kong parser for c. Flag defaults come from the JSON
// and machine-file configuration files at configFile; command-line flags
// override them.
func (c *CLI) parser(
	ctx context.Context,
	exit func(code int),
	configFile string,
) (*kong.Kong, error) {
	vars := kong.Vars{
		cmd.ConfigIdentifier:  configFile,
		cmd.CacheIdentifier:   cacheDir(),
		cmd.SectionIdentifier: pkg.Name,
	}.
		CloneWith(c.Log.vars()).
		CloneWith(c.Pprof.vars()).
		CloneWith(cmd.Vars())

	return kong.New(c,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, configFile+".json"),
		kong.Configuration(resolve(ctx, pkg.Name), configFile),
		vars,
	)
}

// Run parses args and runs the selected command. exit is called by kong for
// --help and usage errors.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var c CLI

	// Logger flags take effect before parsing, wherever they appear.
	c.Log.scan(args)

	parser, err := c.parser(ctx, exit, configPath(baseConfig))
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer c.Log.start(ctx)()
	defer c.Pprof.start(ctx)()

	return ktx.Run()
}
