package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payroll"

var (
	// MCP tool metrics
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mcp",
			Name:      "tool_calls_total",
			Help:      "Total number of MCP tool invocations",
		},
		[]string{"tool"},
	)

	ServerEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mcp",
			Name:      "server_events_total",
			Help:      "Server lifecycle events",
		},
		[]string{"event"},
	)

	// Graph metrics
	GraphBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "builds_total",
			Help:      "Total number of graph builds by outcome",
		},
		[]string{"result"},
	)

	GraphBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "build_duration_seconds",
			Help:      "Graph build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs to ~3s
		},
	)

	GraphNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Number of nodes in the current graph",
		},
	)

	// Scan metrics
	ScanFindings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "findings",
			Help:      "Records flagged by the latest run of each scan",
		},
		[]string{"scan"},
	)

	// Anomaly metrics
	AnomalyRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "anomaly",
			Name:      "runs_total",
			Help:      "Total number of anomaly scoring runs by status",
		},
		[]string{"status"},
	)

	AnomalyRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "anomaly",
			Name:      "run_duration_seconds",
			Help:      "Isolation forest fit and score duration",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
	)

	// Export metrics
	ExportBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "batches_total",
			Help:      "Neo4j export batches by outcome",
		},
		[]string{"result"},
	)
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordToolCall counts one invocation of the named tool.
func RecordToolCall(tool string) {
	ToolCallsTotal.WithLabelValues(tool).Inc()
}

// RecordServerEvent counts a lifecycle event such as startup.
func RecordServerEvent(event string) {
	ServerEventsTotal.WithLabelValues(event).Inc()
}

// RecordScanFindings publishes the latest count for a scan.
func RecordScanFindings(scan string, count int) {
	ScanFindings.WithLabelValues(scan).Set(float64(count))
}

// RecordAnomalyRun records the outcome and duration of one pipeline run.
func RecordAnomalyRun(status string, duration time.Duration) {
	AnomalyRunsTotal.WithLabelValues(status).Inc()
	AnomalyRunDuration.Observe(duration.Seconds())
}

// RecordExportBatch counts one Neo4j write batch.
func RecordExportBatch(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ExportBatchesTotal.WithLabelValues(result).Inc()
}
