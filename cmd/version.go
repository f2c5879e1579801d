package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shivasurya/lineageflow/analytics"
)

// Version and GitCommit are set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and commit information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", Version)
		fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		analytics.ReportEvent(analytics.VersionCommand)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
