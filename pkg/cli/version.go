package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "retention-ltv %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}
}

// VersionString -> "version (commit)", renvoyé par /api/health.
func VersionString() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
