package template

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shortcut-cli/sc/commands/flags"
	"github.com/shortcut-cli/sc/commands/text"
	"github.com/shortcut-cli/sc/entityfields"
	"github.com/shortcut-cli/sc/lookup"
	"github.com/shortcut-cli/sc/operations"
	sctemplate "github.com/shortcut-cli/sc/template"
)

var (
	runShort = "Execute a template against Shortcut"

	runLong = text.LongDesc(`
		Validates a template and executes its operations in order against the Shortcut API.

		Before anything is sent the command prints a summary of the planned operations and asks
		for confirmation. Use --yes to skip the prompt or --dry-run to print every request
		without sending it. Names of members, groups, labels, workflow states and custom fields
		are resolved to ids through the API and cached in the configured cache directory.

		The command exits with an error when any operation failed, including under on_error: continue.
	`)

	runExample = text.Examples(`
		# Run a template after confirming the plan
		sc template run sprint.yml

		# Print the requests without sending them
		sc template run sprint.yml --dry-run

		# Override a variable and skip the prompt
		sc template run sprint.yml --var sprint="Sprint 25" --yes

		# Read the template from standard input and print a JSON result
		cat sprint.yml | sc template run - --yes --json
	`)
)

// errStdinNeedsConfirmation is returned when a template read from stdin would need the prompt,
// which also reads from stdin.
var errStdinNeedsConfirmation = errors.New("reading the template from stdin requires --yes or --dry-run")

type runFlags struct {
	file   string
	config string
	yes    bool
	dryRun bool
	json   bool
	vars   []string
}

// newRunCmd creates the "run" subcommand.
func newRunCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run <file|->",
		Short:   runShort,
		Long:    runLong,
		Example: runExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := runFlags{
				file:   args[0],
				config: flags.MustString(cmd.Flags().GetString("config")),
				yes:    flags.MustBool(cmd.Flags().GetBool("yes")),
				dryRun: flags.MustBool(cmd.Flags().GetBool("dry-run")),
				json:   flags.MustBool(cmd.Flags().GetBool("json")),
				vars:   flags.MustStringArray(cmd.Flags().GetStringArray("var")),
			}

			return runRun(cmd, cfg, f)
		},
	}

	flags.Yes(cmd)
	flags.DryRun(cmd)
	flags.JSON(cmd)
	flags.Vars(cmd)

	return cmd
}

// runRun executes the run command logic.
func runRun(cmd *cobra.Command, cfg Config, f runFlags) error {
	deps := cfg.deps()
	ctx := cmd.Context()

	overrides, err := flags.ParseVars(f.vars)
	if err != nil {
		return err
	}

	tmpl, err := sctemplate.ParseFileFrom(f.file, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := tmpl.ApplyVarOverrides(overrides); err != nil {
		return err
	}
	if err := validateTemplate(cmd, tmpl); err != nil {
		return err
	}
	if f.file == sctemplate.StdinPath && !f.yes && !f.dryRun {
		return errStdinNeedsConfirmation
	}

	conf, err := deps.ConfigLoader(f.config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := deps.StoreFactory(conf.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	execCfg := operations.Config{
		Logger:    cfg.Logger,
		Stdin:     cmd.InOrStdin(),
		DryRun:    f.dryRun,
		Confirmed: f.yes,
	}
	if f.json {
		execCfg.Prompt = cmd.ErrOrStderr()
	} else {
		execCfg.Stdout = cmd.OutOrStdout()
	}

	var resolvers *lookup.Resolvers
	if f.dryRun {
		resolvers = lookup.New(nil, store, lookup.Offline(), lookup.WithLogger(cfg.Logger))
	} else {
		if err := conf.RequireToken(); err != nil {
			return err
		}
		client, err := deps.ClientFactory(conf, cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to create Shortcut client: %w", err)
		}
		execCfg.Client = client
		resolvers = lookup.New(client, store, lookup.WithLogger(cfg.Logger))
	}

	var baseDir string
	if f.file != sctemplate.StdinPath {
		baseDir = filepath.Dir(f.file)
	}
	execCfg.Fields = entityfields.New(entityfields.FromLookup(resolvers), entityfields.WithBaseDir(baseDir))

	result, err := operations.NewExecutor(execCfg).Execute(ctx, tmpl)
	if err != nil {
		return err
	}

	if f.json {
		if err := operations.WriteJSON(cmd.OutOrStdout(), result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}
	if result.Failed() {
		return fmt.Errorf("%d of %d operation(s) failed", result.Summary.Failed, result.Summary.Total)
	}

	return nil
}
