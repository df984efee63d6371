package importer

import (
	"time"

	"github.com/SFDataHub/scanpipe/pkg/logger"
)

// Option applies a configuration option to the Importer.
type Option func(*Importer)

// WithDefaultServer sets the fallback server applied to rows that carry no
// server column of their own.
func WithDefaultServer(server string) Option {
	return func(im *Importer) {
		im.defaultServer = server
	}
}

// WithScanBatchSize sets the chunk size for scan document flushes.
func WithScanBatchSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.scanBatchSize = n
		}
	}
}

// WithLatestBatchSize sets the chunk size for latest document flushes.
func WithLatestBatchSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.latestBatchSize = n
		}
	}
}

// WithHistoryBatchSize sets the chunk size for aggregate document flushes.
func WithHistoryBatchSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.historyBatchSize = n
		}
	}
}

// WithBatchPause sets the throttling pause between batch commits.
func WithBatchPause(pause time.Duration) Option {
	return func(im *Importer) {
		if pause >= 0 {
			im.batchPause = pause
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(cb Callback) Option {
	return func(im *Importer) {
		im.onProgress = cb
	}
}

// WithLogger sets a custom logger for the importer.
func WithLogger(log logger.Logger) Option {
	return func(im *Importer) {
		if log != nil {
			im.log = log
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}
