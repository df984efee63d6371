package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if SCANPIPE_CONFIG is set
//  3. env (prefix SCANPIPE_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("SCANPIPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SCANPIPE_STORE_PATH, SCANPIPE_SCAN_BATCH_SIZE, ...
	// Keys map to the koanf tags with underscores preserved.
	envProvider := env.Provider("SCANPIPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "scanpipe_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.StorePath == "" {
		return nil, fmt.Errorf("%w: store_path must not be empty", ErrInvalidConfig)
	}
	if cfg.ScanBatchSize <= 0 || cfg.LatestBatchSize <= 0 || cfg.HistoryBatchSize <= 0 {
		return nil, fmt.Errorf("%w: batch sizes must be positive", ErrInvalidConfig)
	}
	if cfg.BatchPauseMS < 0 {
		return nil, fmt.Errorf("%w: batch_pause_ms must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
