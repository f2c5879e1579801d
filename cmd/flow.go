package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shivasurya/lineageflow/analytics"
	"github.com/shivasurya/lineageflow/internal/config"
	"github.com/shivasurya/lineageflow/internal/lineage"
	"github.com/shivasurya/lineageflow/internal/lineagelog"
	"github.com/shivasurya/lineageflow/internal/serialize"
	"github.com/shivasurya/lineageflow/internal/store"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Trace taint flow from sources to sinks across a persisted lineage graph",
	Long: `flow runs forward reachability from declared sources and backward
coreachability to declared sinks over a persisted per-procedure lineage
graph, then serializes the surviving per-procedure subgraphs.

Examples:
  # Trace a single source/sink pair
  lineageflow flow --source "api:handle/1\$arg0" --sink "db:query/2\$arg1"

  # Trace through a sanitizer and emit SARIF
  lineageflow flow --source "api:handle/1\$arg0" --sink "db:query/2\$arg1" \
    --sanitizer "util:escape/1" --format sarif --results results.sarif`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		startTime := time.Now()

		configPath, _ := cmd.Flags().GetString("config")
		sourceFlags, _ := cmd.Flags().GetStringArray("source")
		sinkFlags, _ := cmd.Flags().GetStringArray("sink")
		sanitizerFlags, _ := cmd.Flags().GetStringArray("sanitizer")
		summariesDir, _ := cmd.Flags().GetString("summaries")
		descriptionsFile, _ := cmd.Flags().GetString("descriptions")
		resultsDir, _ := cmd.Flags().GetString("results")
		edgeBudget, _ := cmd.Flags().GetInt("budget")
		verbose, _ := cmd.Flags().GetBool("verbose")
		debug, _ := cmd.Flags().GetBool("debug")
		formatFlag, _ := cmd.Flags().GetString("format")

		cfg, err := config.Load(configPath)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: %w", err)
		}
		cfg = cfg.ApplyOverrides(summariesDir, descriptionsFile, resultsDir, edgeBudget, formatFlag)
		if err := cfg.Validate(); err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: %w", err)
		}

		verbosity := lineagelog.VerbosityDefault
		if debug {
			verbosity = lineagelog.VerbosityDebug
		} else if verbose {
			verbosity = lineagelog.VerbosityVerbose
		}
		logger := lineagelog.NewLogger(verbosity)

		if len(sourceFlags) == 0 {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: at least one --source is required")
		}
		if len(sinkFlags) == 0 {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: at least one --sink is required")
		}

		sources, err := parseEndpoints(sourceFlags)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: parsing --source: %w", err)
		}
		sinks, err := parseEndpoints(sinkFlags)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: parsing --sink: %w", err)
		}
		sanitizers, err := parseSanitizers(sanitizerFlags)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: parsing --sanitizer: %w", err)
		}

		logger.Progress("Loading summaries from %s", cfg.SummariesDir)
		summaryStore, err := store.NewJSONSummaryStore(cfg.SummariesDir)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: opening summaries: %w", err)
		}

		var descriptionStore lineage.DescriptionStore = noDescriptions{}
		if cfg.DescriptionsFile != "" {
			if ds, err := store.LoadYAMLDescriptionStore(cfg.DescriptionsFile); err == nil {
				descriptionStore = ds
			} else {
				logger.Debug("no description store loaded from %s: %v", cfg.DescriptionsFile, err)
			}
		}

		logger.Progress("Building caller index...")
		callers, err := lineage.BuildCallerIndex(summaryStore)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: building caller index: %w", err)
		}

		var opts lineage.ForwardOptions
		if cfg.EdgeBudget > 0 {
			opts.EdgeBudget = &cfg.EdgeBudget
		}

		ctx := context.Background()

		logger.Progress("Running forward reachability from %d source(s)...", len(sources))
		reachable, err := lineage.Forward(ctx, summaryStore, callers, sanitizers, sources, opts)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: forward reachability: %w", err)
		}
		logger.Statistic("Forward reachability: %d procedure(s) touched", len(reachable))

		logger.Progress("Running backward coreachability to %d sink(s)...", len(sinks))
		coreachable, err := lineage.Backward(ctx, summaryStore, callers, reachable, sinks)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: backward coreachability: %w", err)
		}
		flowing := 0
		for _, g := range coreachable {
			if !g.IsEmpty() {
				flowing++
			}
		}
		logger.Statistic("Coreachability: %d procedure(s) carry flow", flowing)

		var serializer lineage.GraphSerializer
		switch cfg.Format {
		case lineagelog.FormatSARIF:
			resultsPath := cfg.ResultsDir
			if resultsPath == "" || filepath.Ext(resultsPath) == "" {
				resultsPath = filepath.Join(cfg.ResultsDir, "results.sarif")
			}
			sarifSerializer, err := serialize.NewSARIFFileSerializer(resultsPath)
			if err != nil {
				analytics.ReportEvent(analytics.ErrorProcessingFlow)
				return fmt.Errorf("flow: opening SARIF output: %w", err)
			}
			defer sarifSerializer.Close()
			serializer = sarifSerializer
		default:
			if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
				analytics.ReportEvent(analytics.ErrorProcessingFlow)
				return fmt.Errorf("flow: creating results directory: %w", err)
			}
			serializer = serialize.NewJSONSerializer(cfg.ResultsDir)
		}

		logger.Progress("Serializing results to %s", cfg.ResultsDir)
		if err := lineage.Report(coreachable, descriptionStore, serializer); err != nil {
			analytics.ReportEvent(analytics.ErrorProcessingFlow)
			return fmt.Errorf("flow: %w", err)
		}

		flagged := color.New(color.FgRed, color.Bold).SprintFunc()
		clean := color.New(color.FgGreen).SprintFunc()
		if flowing == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), clean("No taint flow found from the declared sources to the declared sinks."))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), flagged(fmt.Sprintf("Taint flow found in %d procedure(s).", flowing)))
		}

		logger.Debug("flow command completed in %s", time.Since(startTime))
		analytics.ReportEvent(analytics.FlowCommand)
		return nil
	},
}

// noDescriptions is the DescriptionStore used when no descriptions file
// resolves; every lookup misses.
type noDescriptions struct{}

func (noDescriptions) Resolve(lineage.Procedure) (string, bool) { return "", false }

func parseEndpoints(literals []string) ([]lineage.Node, error) {
	nodes := make([]lineage.Node, 0, len(literals))
	for _, l := range literals {
		n, err := lineage.ParseEndpoint(l)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func parseSanitizers(literals []string) (map[lineage.Procedure]bool, error) {
	sanitizers := make(map[lineage.Procedure]bool, len(literals))
	for _, l := range literals {
		p, err := lineage.ParseSanitizer(l)
		if err != nil {
			return nil, err
		}
		sanitizers[p] = true
	}
	return sanitizers, nil
}

func init() {
	rootCmd.AddCommand(flowCmd)
	flowCmd.Flags().String("config", "", "Path to .lineageflow.yaml configuration file")
	flowCmd.Flags().StringArray("source", nil, `Source endpoint "[module:]function/arity$(ret|argN)". Repeatable.`)
	flowCmd.Flags().StringArray("sink", nil, `Sink endpoint "[module:]function/arity$(ret|argN)". Repeatable.`)
	flowCmd.Flags().StringArray("sanitizer", nil, `Sanitizer procedure "[module:]function/arity". Repeatable.`)
	flowCmd.Flags().String("summaries", "", "Directory of persisted per-procedure summary JSON files")
	flowCmd.Flags().String("descriptions", "", "Path to a descriptions.yaml mapping procedures to human-readable descriptions")
	flowCmd.Flags().String("results", "", "Directory (json format) or file path (sarif format) for serialized results")
	flowCmd.Flags().Int("budget", 0, "Maximum edges to explore in total, across all procedures, during forward reachability (0 = unbounded)")
	flowCmd.Flags().BoolP("verbose", "v", false, "Show progress and statistics")
	flowCmd.Flags().Bool("debug", false, "Show detailed debug diagnostics with elapsed-time timestamps")
	flowCmd.Flags().String("format", "", "Output format: json or sarif (default: json, or the config file's format)")
}
