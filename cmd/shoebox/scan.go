package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shoebox/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Enumerate source drives and write per-drive manifests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.workspaceConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.stageLogger(cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			progress := newProgressRenderer(stdout)

			var result *scanner.Result
			err = withRunLock(cfg, func() error {
				var scanErr error
				result, scanErr = scanner.New(cfg, logger).Scan(stageContext(cmd), progress.Scan)
				return scanErr
			})
			progress.Finish()
			if err != nil {
				return err
			}

			printScanResult(stdout, result, shouldColorize(stdout))
			return nil
		},
	}
}

func printScanResult(out io.Writer, result *scanner.Result, colorize bool) {
	for _, line := range renderSectionHeader("Scan Summary", colorize) {
		fmt.Fprintln(out, line)
	}
	if len(result.Drives) > 0 {
		rows := make([][]string, 0, len(result.Drives))
		for _, drive := range result.Drives {
			rows = append(rows, []string{
				drive.Label,
				countPrinter.Sprintf("%d", drive.Files),
				humanize.Bytes(uint64(drive.Bytes)),
				drive.ManifestPath,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Drive", "Files", "Size", "Manifest"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
		))
	}
	countPrinter.Fprintf(out, "Scanned %d drives: %d files (%s)\n",
		result.DrivesScanned, result.TotalFiles, humanize.Bytes(uint64(result.TotalBytes)))
	printProblemList(out, "Warnings", result.Errors, statusWarn, colorize)
}
