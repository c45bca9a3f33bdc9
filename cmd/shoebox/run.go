package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shoebox/internal/pipeline"
)

// runDurationPrecision keeps durations readable in run summaries.
const runDurationPrecision = 100 * time.Millisecond

func newRunCommand(ctx *commandContext) *cobra.Command {
	var live, dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full workflow: scan, copy, analyze, consolidate",
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

			stdout := cmd.OutOrStdout()
			progress := newProgressRenderer(stdout)

			summary, err := pipeline.New(cfg, logger).Run(cmd.Context(), pipeline.Progress{
				Scan: progress.Scan,
				Copy: progress.Copy,
			})
			progress.Finish()
			if err != nil {
				return err
			}

			printRunSummary(stdout, summary, shouldColorize(stdout))
			return nil
		},
	}

	addModeFlags(cmd, &live, &dryRun)
	return cmd
}

func printRunSummary(out io.Writer, summary *pipeline.Summary, colorize bool) {
	for _, line := range renderSectionHeader(fmt.Sprintf("Run Summary (%s)", modeLabel(summary.DryRun)), colorize) {
		fmt.Fprintln(out, line)
	}

	rows := [][]string{
		{"Run ID", summary.RunID},
		{"Duration", summary.Duration.Round(runDurationPrecision).String()},
	}
	if summary.Scan != nil {
		rows = append(rows, []string{"Scanned",
			countPrinter.Sprintf("%d files (%s) on %d drives",
				summary.Scan.TotalFiles, humanize.Bytes(uint64(summary.Scan.TotalBytes)), summary.Scan.DrivesScanned)})
	}
	if summary.Copy != nil {
		verb := "Copied"
		if summary.DryRun {
			verb = "Copy plan"
		}
		rows = append(rows, []string{verb,
			countPrinter.Sprintf("%d of %d files (%s)",
				summary.Copy.CopiedFiles, summary.Copy.TotalFiles, humanize.Bytes(uint64(summary.Copy.CopiedBytes)))})
	}
	if summary.Combined != nil {
		rows = append(rows, []string{"Combined manifest", countPrinter.Sprintf("%d files", len(summary.Combined.Files))})
	}
	if summary.Analysis != nil {
		rows = append(rows, []string{"Duplicate groups",
			countPrinter.Sprintf("%d (%s recoverable)",
				summary.Analysis.DuplicateGroups, humanize.Bytes(uint64(summary.Analysis.SpaceSavings)))})
	}
	if summary.Consolidation != nil {
		rows = append(rows, []string{"Final collection",
			countPrinter.Sprintf("%d files, %s",
				summary.Consolidation.FinalFiles, humanize.Bytes(uint64(summary.Consolidation.FinalBytes)))})
	}
	fmt.Fprintln(out, renderTable([]string{"Stage", "Result"}, rows, []columnAlignment{alignLeft, alignLeft}))

	if summary.Consolidation != nil && summary.Consolidation.ReportPath != "" {
		fmt.Fprintf(out, "Report: %s\n", summary.Consolidation.ReportPath)
	}
	if summary.DryRun {
		fmt.Fprintln(out, "Dry run: no files were modified. Re-run with --live to apply.")
	}
	printProblemList(out, "Stage errors", summary.Errors(), statusError, colorize)
}
