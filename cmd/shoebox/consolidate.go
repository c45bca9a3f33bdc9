package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shoebox/internal/consolidator"
)

func newConsolidateCommand(ctx *commandContext) *cobra.Command {
	var live, dryRun bool

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Apply duplicate recommendations and build the final collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := resolveMode(cfg, live, dryRun); err != nil {
				return err
			}
			if !cfg.Process.DryRun {
				if _, err := ctx.workspaceConfig(); err != nil {
					return err
				}
			}
			logger, err := ctx.stageLogger(cfg)
			if err != nil {
				return err
			}

			var result *consolidator.Result
			err = withRunLock(cfg, func() error {
				var consolidateErr error
				result, consolidateErr = consolidator.New(cfg, logger).Consolidate(stageContext(cmd))
				return consolidateErr
			})
			if err != nil {
				return err
			}

			printConsolidationResult(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	addModeFlags(cmd, &live, &dryRun)
	return cmd
}

func printConsolidationResult(out io.Writer, result *consolidator.Result, colorize bool) {
	for _, line := range renderSectionHeader(fmt.Sprintf("Consolidation (%s)", modeLabel(result.DryRun)), colorize) {
		fmt.Fprintln(out, line)
	}
	rows := [][]string{
		{"Groups processed", countPrinter.Sprintf("%d", result.GroupsProcessed)},
		{"Files kept", countPrinter.Sprintf("%d", result.FilesKept)},
		{"Duplicates removed", countPrinter.Sprintf("%d", result.FilesRemoved)},
		{"Unique files copied", countPrinter.Sprintf("%d", result.UniqueCopied)},
		{"Space saved", humanize.Bytes(uint64(result.SpaceSaved))},
		{"Final collection", countPrinter.Sprintf("%d files, %s", result.FinalFiles, humanize.Bytes(uint64(result.FinalBytes)))},
	}
	if !result.DryRun {
		rows = append(rows, []string{"Empty dirs pruned", countPrinter.Sprintf("%d", result.EmptyDirsPruned)})
	}
	fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	if result.ReportPath != "" {
		fmt.Fprintf(out, "Report: %s\n", result.ReportPath)
	}
	if result.JSONReportPath != "" {
		fmt.Fprintf(out, "Run record: %s\n", result.JSONReportPath)
	}
	if result.DryRun {
		fmt.Fprintln(out, "Dry run: no files were modified. Re-run with --live to apply.")
	}
	printProblemList(out, "Errors", result.Errors, statusError, colorize)
}
