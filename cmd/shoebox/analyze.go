package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shoebox/internal/duplicates"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Group duplicate files and write review reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.workspaceConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.stageLogger(cfg)
			if err != nil {
				return err
			}

			var result *duplicates.Result
			err = withRunLock(cfg, func() error {
				var analyzeErr error
				result, analyzeErr = duplicates.New(cfg, logger).Analyze(stageContext(cmd), manifestPath)
				return analyzeErr
			})
			if err != nil {
				return err
			}

			printAnalysisResult(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Manifest to analyze (defaults to the combined copy manifest)")
	return cmd
}

func printAnalysisResult(out io.Writer, result *duplicates.Result, colorize bool) {
	for _, line := range renderSectionHeader("Duplicate Analysis", colorize) {
		fmt.Fprintln(out, line)
	}
	rows := [][]string{
		{"Files analyzed", countPrinter.Sprintf("%d", result.TotalFiles)},
		{"Unique files", countPrinter.Sprintf("%d", result.UniqueFiles)},
		{"Duplicate groups", countPrinter.Sprintf("%d", result.DuplicateGroups)},
		{"Files in groups", countPrinter.Sprintf("%d", result.FilesInGroups)},
		{"Duplicate share", fmt.Sprintf("%.1f%%", result.DuplicatePercent)},
		{"Recoverable space", humanize.Bytes(uint64(result.SpaceSavings))},
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	if result.SummaryPath != "" {
		fmt.Fprintf(out, "Summary report: %s\n", result.SummaryPath)
	}
	if len(result.GroupPaths) > 0 {
		countPrinter.Fprintf(out, "Group reports: %d under %s\n",
			len(result.GroupPaths), filepath.Dir(result.GroupPaths[0]))
	}
	printProblemList(out, "Warnings", result.Warnings, statusWarn, colorize)
}
