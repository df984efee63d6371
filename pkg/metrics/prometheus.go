// Package metrics provides Prometheus metrics for the scanpipe import
// pipeline.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Manager owns the pipeline's Prometheus metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Decode and skip accounting
	rowsDecoded prometheus.Counter
	rowsSkipped *prometheus.CounterVec

	// Write throughput
	docsWritten       *prometheus.CounterVec
	batchesFlushed    prometheus.Counter
	batchFlushLatency prometheus.Histogram

	// Import lifecycle
	importsTotal   *prometheus.CounterVec
	importDuration prometheus.Histogram

	// Progress reporting
	progressReports *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scanpipe",
		subsystem:        "import",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.rowsDecoded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_decoded_total",
		Help:      "Rows decoded from source files.",
	})
	m.rowsSkipped = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_skipped_total",
		Help:      "Rows skipped during import, by reason.",
	}, []string{"reason"})
	m.docsWritten = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "documents_written_total",
		Help:      "Documents written to the store, by record class.",
	}, []string{"class"})
	m.batchesFlushed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batches_flushed_total",
		Help:      "Write batches committed to the store.",
	})
	m.batchFlushLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_flush_duration_seconds",
		Help:      "Latency of individual batch commits.",
		Buckets:   m.histogramBuckets,
	})
	m.importsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Import runs, by kind and outcome.",
	}, []string{"kind", "outcome"})
	m.importDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of import runs.",
		Buckets:   m.histogramBuckets,
	})
	m.progressReports = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "progress",
		Name:      "reports_total",
		Help:      "Monthly progress reports computed, by availability.",
	}, []string{"available"})
}

// RecordRowsDecoded counts rows decoded from a source file.
func RecordRowsDecoded(n int) {
	if globalManager.enabled {
		globalManager.rowsDecoded.Add(float64(n))
	}
}

// RecordRowSkipped counts one skipped row under reason.
func RecordRowSkipped(reason string) {
	if globalManager.enabled {
		globalManager.rowsSkipped.WithLabelValues(reason).Inc()
	}
}

// RecordDocsWritten counts documents written for one record class.
func RecordDocsWritten(class string, n int) {
	if globalManager.enabled {
		globalManager.docsWritten.WithLabelValues(class).Add(float64(n))
	}
}

// RecordBatchFlush counts one committed batch and its latency.
func RecordBatchFlush(seconds float64) {
	if globalManager.enabled {
		globalManager.batchesFlushed.Inc()
		globalManager.batchFlushLatency.Observe(seconds)
	}
}

// RecordImportRun counts one finished import run.
func RecordImportRun(kind, outcome string, seconds float64) {
	if globalManager.enabled {
		globalManager.importsTotal.WithLabelValues(kind, outcome).Inc()
		globalManager.importDuration.Observe(seconds)
	}
}

// RecordProgressReport counts one computed progress report.
func RecordProgressReport(available bool) {
	if globalManager.enabled {
		label := "false"
		if available {
			label = "true"
		}
		globalManager.progressReports.WithLabelValues(label).Inc()
	}
}

// GetRegistry returns the custom registry backing the global manager, for
// exposition or test scraping.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteText renders the global registry's current metric families to w in the
// Prometheus text exposition format. The CLI uses this as its scrape
// equivalent: there is no listener to serve, so metrics are dumped at the end
// of a run instead.
func WriteText(w io.Writer) error {
	families, err := customRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
