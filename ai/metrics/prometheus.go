// Package metrics provides Prometheus metrics export for the routing
// pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter exports routing metrics in Prometheus format.
type Exporter struct {
	registry *prometheus.Registry

	decisions       *prometheus.CounterVec
	decisionLatency *prometheus.HistogramVec
	retrievalHits   prometheus.Histogram
	chatRequests    *prometheus.CounterVec
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
		LatencyBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
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

	e := &Exporter{
		registry: registry,
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idals",
			Subsystem: "router",
			Name:      "decisions_total",
			Help:      "Routing decisions by terminal state and intent.",
		}, []string{"decision", "intent"}),
		decisionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "idals",
			Subsystem: "router",
			Name:      "decision_duration_seconds",
			Help:      "End-to-end routing latency by terminal state.",
			Buckets:   cfg.LatencyBuckets,
		}, []string{"decision"}),
		retrievalHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "idals",
			Subsystem: "knowledge",
			Name:      "retrieval_hits",
			Help:      "Snippets returned per retrieval.",
			Buckets:   []float64{0, 1, 2, 3},
		}),
		chatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idals",
			Subsystem: "server",
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"status"}),
	}

	registry.MustRegister(e.decisions, e.decisionLatency, e.retrievalHits, e.chatRequests)
	return e
}

// ObserveDecision records one completed routing decision.
func (e *Exporter) ObserveDecision(decision, intent string, duration time.Duration) {
	e.decisions.WithLabelValues(decision, intent).Inc()
	e.decisionLatency.WithLabelValues(decision).Observe(duration.Seconds())
}

// ObserveRetrieval records the snippet count of one retrieval.
func (e *Exporter) ObserveRetrieval(hits int) {
	e.retrievalHits.Observe(float64(hits))
}

// CountChatRequest records one HTTP chat request by outcome status.
func (e *Exporter) CountChatRequest(status string) {
	e.chatRequests.WithLabelValues(status).Inc()
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
