package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the catalog service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Reconciliation Metrics
	DiffsComputedTotal   prometheus.Counter
	DiffDuration         prometheus.Histogram
	ImportsAppliedTotal  prometheus.CounterVec
	ImportStageDuration  prometheus.HistogramVec
	ImportRowsWritten    prometheus.CounterVec
	RollbacksTotal       prometheus.CounterVec
	SnapshotSizeRows     prometheus.Gauge
	ValidationIssueTotal prometheus.CounterVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogd_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalogd_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "catalogd_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		DiffsComputedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "catalogd_diffs_computed_total",
				Help: "Total workbook diffs computed against the store",
			},
		),
		DiffDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalogd_diff_duration_seconds",
				Help:    "Time spent assembling and classifying one workbook diff",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		ImportsAppliedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogd_imports_applied_total",
				Help: "Total import apply attempts by outcome",
			},
			[]string{"outcome"},
		),
		ImportStageDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalogd_import_stage_duration_seconds",
				Help:    "Duration of each apply stage",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage"},
		),
		ImportRowsWritten: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogd_import_rows_written_total",
				Help: "Rows written during apply by entity and operation",
			},
			[]string{"entity", "operation"},
		),
		RollbacksTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogd_rollbacks_total",
				Help: "Total rollback attempts by outcome",
			},
			[]string{"outcome"},
		),
		SnapshotSizeRows: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "catalogd_snapshot_size_rows",
				Help: "Row count of the most recently captured snapshot",
			},
		),
		ValidationIssueTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalogd_validation_issues_total",
				Help: "Validation issues produced by severity",
			},
			[]string{"severity"},
		),
	}
}
