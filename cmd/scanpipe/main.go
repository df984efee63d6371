// Command scanpipe imports stat snapshot exports into the document store and
// materializes the derived time-series records the dashboard reads.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SFDataHub/scanpipe/internal/adapters/docstore"
	"github.com/SFDataHub/scanpipe/internal/config"
	"github.com/SFDataHub/scanpipe/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	root := &cobra.Command{
		Use:           "scanpipe",
		Short:         "CSV import and temporal aggregation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(cfg))
	root.AddCommand(newProgressCmd(cfg))

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Get().Error(ctx, "command failed", logger.Error(err))
		os.Exit(1)
	}
}

// openStore selects the configured store backend. "memory" is useful for
// dry runs; anything else is treated as a sqlite path.
func openStore(ctx context.Context, path string) (docstore.Store, error) {
	if path == "memory" {
		return docstore.NewMemoryStore(), nil
	}
	return docstore.OpenSQLite(ctx, path)
}

func pause(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
