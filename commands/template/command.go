// Package template provides the CLI commands that validate and run batch operation templates.
package template

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shortcut-cli/sc/commands/text"
	"github.com/shortcut-cli/sc/pkg/logger"
)

var (
	templateShort = "Batch operation templates"

	templateLong = text.LongDesc(`
		Commands for working with batch operation templates.

		A template is a YAML document listing create, update, delete, comment, link and task
		operations against Shortcut. Operations run in document order and can reference the
		results of earlier ones through aliases.
	`)
)

// Config holds the configuration for template commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	var missing []string

	if c.Logger == nil {
		missing = append(missing, "Logger")
	}

	if len(missing) > 0 {
		return errors.New("template.Config: missing required fields: " + strings.Join(missing, ", "))
	}

	return nil
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// NewCommand creates a new template command with all subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.deps()

	cmd := &cobra.Command{
		Use:   "template",
		Short: templateShort,
		Long:  templateLong,
	}

	cmd.AddCommand(newRunCmd(cfg))
	cmd.AddCommand(newValidateCmd(cfg))

	return cmd, nil
}
