package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/nixattr/cli/cmd"
	"github.com/ardnew/nixattr/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// CLI is the top-level command-line interface for nixattr.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	File    string `default:"${file}" help:"Nix file to operate on, or '-' for stdin" short:"f"`
	InPlace bool   `                  help:"Write set results back to the file"      short:"i"`

	Get  cmd.Get  `cmd:"" help:"Print the value of an attribute"`
	Set  cmd.Set  `cmd:"" help:"Replace the value of an attribute"`
	List cmd.List `cmd:"" help:"List attributes"`
	Dump cmd.Dump `cmd:"" help:"Print the whole document"`
	Repl cmd.Repl `cmd:"" help:"Browse and edit attributes interactively"`
	Init cmd.Init `cmd:"" help:"Initialize configuration file"`
}

// Run executes the nixattr CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFile := configPath(baseConfig + ".nix")

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  cacheDir(),
		cmd.FileIdentifier:   pkg.DefaultFile,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so that errors reported while parsing the
	// remaining flags already use the requested logger.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx), configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSource(ctx, cmd.Source{Path: cli.File, InPlace: cli.InPlace})

	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
