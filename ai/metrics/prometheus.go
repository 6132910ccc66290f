// Package metrics provides Prometheus metrics export for the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports gateway metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	// Storage metrics
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Counter
	deletes     *prometheus.CounterVec

	// Summary metrics
	summaryRequests *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pwalib",
		Subsystem: "storage",
		Name:      "uploads_total",
		Help:      "Total file uploads by status.",
	}, []string{"status"})

	e.uploadBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pwalib",
		Subsystem: "storage",
		Name:      "upload_bytes_total",
		Help:      "Total bytes written to object storage.",
	})

	e.deletes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pwalib",
		Subsystem: "storage",
		Name:      "deletes_total",
		Help:      "Total object deletions by status.",
	}, []string{"status"})

	e.summaryRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pwalib",
		Subsystem: "summary",
		Name:      "requests_total",
		Help:      "Total summary generations by source (primary, fallback_model, fallback_static).",
	}, []string{"source"})

	e.llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pwalib",
		Subsystem: "summary",
		Name:      "llm_latency_seconds",
		Help:      "LLM call latency by model.",
		Buckets:   cfg.LatencyBuckets,
	}, []string{"model"})

	registry.MustRegister(e.uploads, e.uploadBytes, e.deletes, e.summaryRequests, e.llmLatency)

	return e
}

// RecordUpload records an upload attempt and, on success, the bytes written.
func (e *Exporter) RecordUpload(status string, size int64) {
	e.uploads.WithLabelValues(status).Inc()
	if status == "ok" && size > 0 {
		e.uploadBytes.Add(float64(size))
	}
}

// RecordDelete records a delete attempt.
func (e *Exporter) RecordDelete(status string) {
	e.deletes.WithLabelValues(status).Inc()
}

// RecordSummary records a summary generation and its LLM latency.
// The model is empty for the canned fallback; no latency is recorded then.
func (e *Exporter) RecordSummary(source, model string, latency time.Duration) {
	e.summaryRequests.WithLabelValues(source).Inc()
	if model != "" {
		e.llmLatency.WithLabelValues(model).Observe(latency.Seconds())
	}
}

// Handler returns the HTTP handler serving the registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
