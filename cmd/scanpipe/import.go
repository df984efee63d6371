package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SFDataHub/scanpipe/internal/config"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
	"github.com/SFDataHub/scanpipe/internal/importer"
	"github.com/SFDataHub/scanpipe/pkg/logger"
	"github.com/SFDataHub/scanpipe/pkg/metrics"
)

func newImportCmd(cfg *config.Config) *cobra.Command {
	var (
		kind        string
		server      string
		store       string
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a player or guild snapshot export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.Get().Named("cli")

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			if store == "" {
				store = cfg.StorePath
			}
			st, err := openStore(ctx, store)
			if err != nil {
				return err
			}
			defer st.Close()

			if server == "" {
				server = cfg.DefaultServer
			}

			im := importer.New(st,
				importer.WithDefaultServer(server),
				importer.WithScanBatchSize(cfg.ScanBatchSize),
				importer.WithLatestBatchSize(cfg.LatestBatchSize),
				importer.WithHistoryBatchSize(cfg.HistoryBatchSize),
				importer.WithBatchPause(pause(cfg.BatchPauseMS)),
				importer.WithProgress(func(u importer.Update) {
					log.Debug(ctx, "progress",
						logger.String("pass", string(u.Pass)),
						logger.String("phase", string(u.Phase)),
						logger.Int("current", u.Current),
						logger.Int("total", u.Total),
					)
				}),
			)

			report, err := im.Run(ctx, model.Kind(kind), string(raw))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if showMetrics {
				return metrics.WriteText(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "import kind: players or guilds (required)")
	cmd.Flags().StringVar(&server, "server", "", "fallback server for rows without one")
	cmd.Flags().StringVar(&store, "store", "", "sqlite path or \"memory\" (defaults to config)")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "dump Prometheus metrics to stderr after the run")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
