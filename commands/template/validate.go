package template

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/shortcut-cli/sc/commands/text"
	sctemplate "github.com/shortcut-cli/sc/template"
)

var (
	validateShort = "Check a template without running it"

	validateLong = text.LongDesc(`
		Parses a template and checks every operation against the supported actions, entities,
		required fields, aliases and references. Nothing is sent to the API.

		All problems are reported at once.
	`)

	validateExample = text.Examples(`
		# Validate a template file
		sc template validate sprint.yml

		# Validate a template read from standard input
		cat sprint.yml | sc template validate -
	`)
)

// newValidateCmd creates the "validate" subcommand.
func newValidateCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:     "validate <file|->",
		Short:   validateShort,
		Long:    validateLong,
		Example: validateExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, cfg, args[0])
		},
	}
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, cfg Config, file string) error {
	tmpl, err := sctemplate.ParseFileFrom(file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if err := validateTemplate(cmd, tmpl); err != nil {
		return err
	}

	cfg.Logger.Debugw("Template is valid", "file", file, "operations", len(tmpl.Operations))
	cmd.Printf("✅ Template is valid: %d operation(s), %d request(s)\n", len(tmpl.Operations), tmpl.Total())

	return nil
}

// errInvalidTemplate is returned after the validation errors have been printed.
var errInvalidTemplate = errors.New("template is invalid")

// validateTemplate prints every validation error of tmpl to stderr.
func validateTemplate(cmd *cobra.Command, tmpl *sctemplate.Template) error {
	errs := sctemplate.Validate(tmpl)
	if len(errs) == 0 {
		return nil
	}

	cmd.PrintErrf("Template has %d validation error(s):\n", len(errs))
	for _, e := range errs {
		cmd.PrintErrf("  %s\n", e.Error())
	}

	return errInvalidTemplate
}
