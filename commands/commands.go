// Package commands provides the CLI command packages of sc.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	tmplCmd, err := cmds.Template(commands.TemplateConfig{})
//	root.AddCommand(tmplCmd, cmds.Version(version))
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/shortcut-cli/sc/commands/template"
//
//	cmd, err := template.NewCommand(template.Config{
//	    Logger: lggr,
//	    Deps:   template.Deps{...}, // inject fakes for testing
//	})
package commands

import (
	"github.com/spf13/cobra"

	"github.com/shortcut-cli/sc/commands/template"
	"github.com/shortcut-cli/sc/commands/version"
	"github.com/shortcut-cli/sc/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// TemplateConfig holds configuration for template commands.
type TemplateConfig struct {
	// Deps overrides the config loader, API client and cache used by the commands.
	// Nil fields use production defaults.
	Deps template.Deps
}

// Template creates the template command group for validating and running templates.
//
// Usage:
//
//	cmds := commands.New(lggr)
//	cmd, err := cmds.Template(commands.TemplateConfig{})
func (c *Commands) Template(cfg TemplateConfig) (*cobra.Command, error) {
	return template.NewCommand(template.Config{
		Logger: c.lggr,
		Deps:   cfg.Deps,
	})
}

// Version creates the version command reporting the given build version.
func (c *Commands) Version(v string) *cobra.Command {
	return version.NewCommand(v)
}
