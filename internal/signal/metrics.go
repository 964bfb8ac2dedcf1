// Package signal implements the signal ranking pipeline: ingesting news
// articles into the vector index and ranking them against a user context.
package signal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics names as constants for consistency.
const (
	MetricArticlesIngested   = "signal_articles_ingested_total"
	MetricIngestErrors       = "signal_ingest_errors_total"
	MetricSignalsGenerated   = "signal_signals_generated_total"
	MetricGenerationFailures = "signal_generation_failures_total"
	MetricIngestLatency      = "signal_ingest_latency_seconds"
	MetricGenerateLatency    = "signal_generate_latency_seconds"
)

// Metrics contains Prometheus metrics for the signal pipeline.
// All operations are thread-safe.
type Metrics struct {
	articlesIngested   prometheus.Counter
	ingestErrors       prometheus.Counter
	signalsGenerated   prometheus.Counter
	generationFailures prometheus.Counter
	ingestLatency      prometheus.Histogram
	generateLatency    prometheus.Histogram
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		articlesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricArticlesIngested,
			Help: "Total number of articles embedded and stored in the index",
		}),
		ingestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricIngestErrors,
			Help: "Total number of articles skipped due to ingestion errors",
		}),
		signalsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSignalsGenerated,
			Help: "Total number of signals returned by ranking requests",
		}),
		generationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricGenerationFailures,
			Help: "Total number of ranking requests that failed",
		}),
		ingestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricIngestLatency,
			Help:    "Histogram of per-article ingestion latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		generateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricGenerateLatency,
			Help:    "Histogram of signal ranking latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncArticlesIngested increments the ingested articles counter.
func (m *Metrics) IncArticlesIngested() {
	m.articlesIngested.Inc()
}

// IncIngestErrors increments the ingest errors counter.
func (m *Metrics) IncIngestErrors() {
	m.ingestErrors.Inc()
}

// AddSignalsGenerated adds n to the generated signals counter.
func (m *Metrics) AddSignalsGenerated(n int) {
	m.signalsGenerated.Add(float64(n))
}

// IncGenerationFailures increments the generation failures counter.
func (m *Metrics) IncGenerationFailures() {
	m.generationFailures.Inc()
}

// ObserveIngestLatency records a per-article ingestion latency sample.
func (m *Metrics) ObserveIngestLatency(seconds float64) {
	m.ingestLatency.Observe(seconds)
}

// ObserveGenerateLatency records a ranking latency sample.
func (m *Metrics) ObserveGenerateLatency(seconds float64) {
	m.generateLatency.Observe(seconds)
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.articlesIngested,
		m.ingestErrors,
		m.signalsGenerated,
		m.generationFailures,
		m.ingestLatency,
		m.generateLatency,
	}
}
