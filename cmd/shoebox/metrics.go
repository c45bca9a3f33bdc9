package main

import (
	"github.com/spf13/cobra"

	"shoebox/internal/logging"
	"shoebox/internal/metrics"
)

func newMetricsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Emit a workspace census as InfluxDB line protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// Stdout carries only line protocol so the output can be piped
			// straight into a collector.
			collector := metrics.New(cfg, logging.NewNop())
			return collector.Write(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
