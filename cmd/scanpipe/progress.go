package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/SFDataHub/scanpipe/internal/config"
	"github.com/SFDataHub/scanpipe/internal/domain/baseline"
	"github.com/SFDataHub/scanpipe/internal/domain/progress"
	"github.com/SFDataHub/scanpipe/internal/domain/temporal"
	"github.com/SFDataHub/scanpipe/pkg/metrics"
)

func newProgressCmd(cfg *config.Config) *cobra.Command {
	var (
		guildID     string
		month       string
		store       string
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Compute the monthly progress report for a guild",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mk, err := temporal.ParseMonthKey(month)
			if err != nil {
				return err
			}

			if store == "" {
				store = cfg.StorePath
			}
			st, err := openStore(ctx, store)
			if err != nil {
				return err
			}
			defer st.Close()

			baselines := baseline.NewManager(st, baseline.NewCache())
			reporter := progress.NewReporter(st, baselines)

			doc, err := reporter.Monthly(ctx, guildID, mk)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return err
			}
			if showMetrics {
				return metrics.WriteText(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&guildID, "guild", "", "guild identifier (required)")
	cmd.Flags().StringVar(&month, "month", "", "calendar month, e.g. 2026-08 (required)")
	cmd.Flags().StringVar(&store, "store", "", "sqlite path or \"memory\" (defaults to config)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "dump Prometheus metrics to stderr after the run")
	_ = cmd.MarkFlagRequired("guild")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
