package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/shortcut-cli/sc/commands"
	"github.com/shortcut-cli/sc/commands/flags"
	"github.com/shortcut-cli/sc/config"
	"github.com/shortcut-cli/sc/pkg/logger"
)

// version is stamped at build time with -ldflags "-X main.version=v1.2.3".
var version string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return err
	}

	lggr, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer func() { _ = lggr.Sync() }()

	root, err := newRootCmd(lggr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

func newRootCmd(lggr logger.Logger) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:          "sc",
		Short:        "sc runs declarative batch operations against Shortcut",
		SilenceUsage: true,
	}
	flags.Config(root, config.DefaultPath())

	cmds := commands.New(lggr)
	tmplCmd, err := cmds.Template(commands.TemplateConfig{})
	if err != nil {
		return nil, err
	}
	root.AddCommand(tmplCmd, cmds.Version(version))

	return root, nil
}

// configPath finds the --config value before cobra parses the command line, since the logger
// has to exist before the commands are built.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("sc", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	path := fs.String("config", config.DefaultPath(), "")
	_ = fs.Parse(args)

	return *path
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	lvl, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lcfg := logger.Config{Level: lvl, JSON: cfg.LogJSON}

	return lcfg.New()
}
