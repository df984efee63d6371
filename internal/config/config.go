// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults; Load(ctx) layers an
//   optional YAML file and environment variables on top.
// - External errors must be wrapped via this package's error helpers.
package config

import "context"

// Config contains process configuration for the import pipeline.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// StorePath points at the sqlite database file; "memory" selects the
	// in-memory store.
	StorePath string `koanf:"store_path"`

	// DefaultServer fills the server field for rows that lack one.
	DefaultServer string `koanf:"default_server"`

	// ScanBatchSize bounds scan-document write batches.
	ScanBatchSize int `koanf:"scan_batch_size"`

	// LatestBatchSize bounds latest-document write batches. Latest rows are
	// the widest record class, so the default is deliberately small.
	LatestBatchSize int `koanf:"latest_batch_size"`

	// HistoryBatchSize bounds weekly/monthly aggregate write batches.
	HistoryBatchSize int `koanf:"history_batch_size"`

	// BatchPauseMS is the throttling pause between batch commits.
	BatchPauseMS int `koanf:"batch_pause_ms"`
}

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		StorePath:        "scanpipe.db",
		ScanBatchSize:    120,
		LatestBatchSize:  40,
		HistoryBatchSize: 120,
		BatchPauseMS:     150,
	}
}
