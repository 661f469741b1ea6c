// ABOUTME: Version command to display build information
// ABOUTME: Shows version, commit hash, build date, and the configured model
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/esgos/internal/llm"
)

var (
	versionInfo = VersionInfo{
		Version: "dev",
		Commit:  "none",
		Date:    "unknown",
	}
)

// VersionInfo contains build information
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
}

// SetVersion sets the version information (called from main)
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date for the esgos CLI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd, versionInfo, func(w io.Writer) {
				fmt.Fprintf(w, "esgos %s\n", versionInfo.Version)
				fmt.Fprintf(w, "Commit: %s\n", versionInfo.Commit)
				fmt.Fprintf(w, "Built:  %s\n", versionInfo.Date)
				fmt.Fprintf(w, "Model:  %s (default)\n", llm.DefaultModel)
			})
		},
	}

	return cmd
}
