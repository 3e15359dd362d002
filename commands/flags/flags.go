// Package flags provides reusable flag helpers for CLI commands.
//
// This package should only contain common flags that can be used by multiple commands
// to ensure unified naming and consistent behavior across the CLI.
// Command-specific flags should be defined locally in the command file.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// MustStringArray returns the string slice value, ignoring the error.
// Safe to use with registered flags where GetStringArray cannot fail.
func MustStringArray(s []string, _ error) []string { return s }

// Config adds the persistent --config flag pointing at the sc config file.
// Retrieve the value with cmd.Flags().GetString("config") from any subcommand.
func Config(cmd *cobra.Command, defaultPath string) {
	cmd.PersistentFlags().String("config", defaultPath, "Path to the sc config file")
}

// Yes adds the --yes/-y flag that skips the confirmation prompt.
// Retrieve the value with cmd.Flags().GetBool("yes").
func Yes(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

// DryRun adds the --dry-run flag that prints requests instead of sending them.
// Retrieve the value with cmd.Flags().GetBool("dry-run").
func DryRun(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Print every request instead of sending it")
}

// JSON adds the --json flag that switches command output to JSON.
// Retrieve the value with cmd.Flags().GetBool("json").
func JSON(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print the result as JSON")
}

// Vars adds the repeatable --var key=value flag.
// Retrieve the values with cmd.Flags().GetStringArray("var") and parse them with ParseVars.
//
// Usage:
//
//	flags.Vars(cmd)
//	// later in RunE:
//	vars, err := flags.ParseVars(flags.MustStringArray(cmd.Flags().GetStringArray("var")))
func Vars(cmd *cobra.Command) {
	cmd.Flags().StringArray("var", nil, "Override a template variable (key=value, repeatable)")
}

// ParseVars turns key=value pairs into a map. The value may itself contain '='; a later pair
// for the same key wins.
func ParseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}
		vars[key] = value
	}

	return vars, nil
}
