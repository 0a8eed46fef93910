// Package metrics provides Prometheus metrics for pubinfo runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for a pubinfo run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Input
	rowsRead *prometheus.CounterVec

	// Assembly
	assembled     *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec

	// Output
	documentsWritten *prometheus.CounterVec
	writeErrors      *prometheus.CounterVec

	// Run outcome
	runDuration    prometheus.Gauge
	runFailures    *prometheus.CounterVec
	lastSuccessSec prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pubinfo",
		subsystem:        "transform",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		constLabels:      make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rowsRead = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_read_total",
		Help:        "Rows decoded from each extract table",
		ConstLabels: m.constLabels,
	}, []string{"table"})

	m.assembled = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assembled_entities",
		Help:        "Entities assembled in the last run by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Duration of each pipeline stage in seconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.documentsWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "documents_written_total",
		Help:        "Documents written by store and kind",
		ConstLabels: m.constLabels,
	}, []string{"store", "kind"})

	m.writeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "write_errors_total",
		Help:        "Failed document writes by store and kind",
		ConstLabels: m.constLabels,
	}, []string{"store", "kind"})

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_duration_seconds",
		Help:        "Wall time of the last run in seconds",
		ConstLabels: m.constLabels,
	})

	m.runFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_failures_total",
		Help:        "Failed runs by error kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.lastSuccessSec = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_timestamp_seconds",
		Help:        "Unix time of the last successful run",
		ConstLabels: m.constLabels,
	})
}

// Registry returns the registry the manager's metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordRowRead increments the rows read counter for a table.
func RecordRowRead(table string) {
	globalManager.rowsRead.WithLabelValues(table).Inc()
}

// UpdateAssembled sets the number of entities assembled of a kind.
func UpdateAssembled(kind string, count int) {
	globalManager.assembled.WithLabelValues(kind).Set(float64(count))
}

// RecordStageDuration records the duration of a pipeline stage in seconds.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordDocumentWritten increments the documents written counter.
func RecordDocumentWritten(store, kind string) {
	globalManager.documentsWritten.WithLabelValues(store, kind).Inc()
}

// RecordWriteError increments the write errors counter.
func RecordWriteError(store, kind string) {
	globalManager.writeErrors.WithLabelValues(store, kind).Inc()
}

// RecordRunSuccess records the duration and completion time of a run.
func RecordRunSuccess(seconds float64, finishedUnix int64) {
	globalManager.runDuration.Set(seconds)
	globalManager.lastSuccessSec.Set(float64(finishedUnix))
}

// RecordRunFailure increments the failed runs counter.
func RecordRunFailure(kind string, seconds float64) {
	globalManager.runDuration.Set(seconds)
	globalManager.runFailures.WithLabelValues(kind).Inc()
}

// GetRegistry returns the registry behind the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes the package-level metrics in the text exposition
// format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, path, err)
	}
	return nil
}
