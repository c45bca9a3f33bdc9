package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shoebox/internal/copier"
	"shoebox/internal/manifest"
)

func newCopyCommand(ctx *commandContext) *cobra.Command {
	var live, dryRun bool

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy media from source drives into staging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.workspaceConfig()
			if err != nil {
				return err
			}
			if err := resolveMode(cfg, live, dryRun); err != nil {
				return err
			}
			logger, err := ctx.stageLogger(cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			progress := newProgressRenderer(stdout)

			var result *copier.Result
			var combined *manifest.Manifest
			err = withRunLock(cfg, func() error {
				stageCtx := stageContext(cmd)
				stage := copier.New(cfg, logger)
				var copyErr error
				result, copyErr = stage.CopyAll(stageCtx, progress.Copy)
				if copyErr != nil {
					return copyErr
				}
				if !cfg.Process.DryRun {
					combined, copyErr = stage.Combine(stageCtx)
				}
				return copyErr
			})
			progress.Finish()
			if err != nil {
				return err
			}

			printCopyResult(stdout, result, combined, shouldColorize(stdout))
			return nil
		},
	}

	addModeFlags(cmd, &live, &dryRun)
	return cmd
}

func printCopyResult(out io.Writer, result *copier.Result, combined *manifest.Manifest, colorize bool) {
	for _, line := range renderSectionHeader(fmt.Sprintf("Copy Summary (%s)", modeLabel(result.DryRun)), colorize) {
		fmt.Fprintln(out, line)
	}
	if len(result.Drives) > 0 {
		rows := make([][]string, 0, len(result.Drives))
		for _, drive := range result.Drives {
			rows = append(rows, []string{
				drive.Label,
				countPrinter.Sprintf("%d", drive.Copied),
				countPrinter.Sprintf("%d", drive.Skipped),
				countPrinter.Sprintf("%d", drive.Failed),
				humanize.Bytes(uint64(drive.CopiedBytes)),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Drive", "Copied", "Skipped", "Failed", "Bytes"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
		))
	}
	verb := "Copied"
	if result.DryRun {
		verb = "Would copy"
	}
	countPrinter.Fprintf(out, "%s %d of %d files (%s), %d skipped, %d failed\n",
		verb, result.CopiedFiles, result.TotalFiles, humanize.Bytes(uint64(result.CopiedBytes)),
		result.SkippedFiles, result.FailedFiles)
	if combined != nil {
		countPrinter.Fprintf(out, "Combined manifest: %d files\n", len(combined.Files))
	}
	printProblemList(out, "Errors", result.Errors, statusError, colorize)
}
