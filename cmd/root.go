package cmd

import (
	"github.com/shivasurya/lineageflow/analytics"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lineageflow",
	Short: "lineageflow - interprocedural taint-flow extraction over persisted lineage graphs",
	Long:  `lineageflow traces taint from declared sources to declared sinks across a persisted per-procedure lineage graph, honoring call-return realizability.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable metrics collection")
}
