// Package version provides the version command.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/shortcut-cli/sc/commands/text"
	sctemplate "github.com/shortcut-cli/sc/template"
)

// Dev is the version reported by builds that were not stamped through ldflags.
const Dev = "0.0.0-dev"

var versionLong = text.LongDesc(`
	Prints the sc build version and the template format version it executes.
`)

// NewCommand creates the version command for the given build version. An empty version reports
// Dev.
func NewCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sc version",
		Long:  versionLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := Parse(version)
			if err != nil {
				return err
			}

			cmd.Printf("sc %s\n", v.Original())
			if v.Prerelease() != "" {
				cmd.Printf("pre-release: %s\n", v.Prerelease())
			}
			if v.Metadata() != "" {
				cmd.Printf("build: %s\n", v.Metadata())
			}
			cmd.Printf("template format version: %d\n", sctemplate.SupportedVersion)

			return nil
		},
	}
}

// Parse parses a build version such as "v1.4.0" or "1.4.0-rc.1+abc123". An empty string parses
// as Dev.
func Parse(version string) (*semver.Version, error) {
	if version == "" {
		version = Dev
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid build version %q: %w", version, err)
	}

	return v, nil
}
