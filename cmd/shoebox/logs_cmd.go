package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"shoebox/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logPath := filepath.Join(cfg.Paths.LogDir, logs.LogName)
			stdout := cmd.OutOrStdout()

			var tail []string
			var offset int64
			if lines <= 0 {
				tail, offset, err = logs.ReadFrom(logPath, 0)
			} else {
				tail, offset, err = logs.Tail(logPath, lines)
			}
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(stdout, line)
			}

			if !follow {
				if len(tail) == 0 {
					fmt.Fprintln(stdout, "No log entries available")
				}
				return nil
			}

			return logs.Follow(cmd.Context(), logPath, offset, 250*time.Millisecond, func(line string) {
				fmt.Fprintln(stdout, line)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}
