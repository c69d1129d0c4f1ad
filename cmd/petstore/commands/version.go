package commands

import (
	"io"

	"github.com/spf13/cobra"
)

// VersionInfo describes the CLI build.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the petstore CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := &OutputRenderer[VersionInfo]{
				RenderTable: func(w io.Writer, info VersionInfo) error {
					return propertyTable(w, [][2]string{
						{"Version", info.Version},
						{"Commit", info.Commit},
						{"Built", info.Built},
					})
				},
			}

			return renderer.Render(cmd, VersionInfo{Version: version, Commit: commit, Built: date})
		},
	}
}
