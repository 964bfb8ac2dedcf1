package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles the handler groups mounted by NewRouter.
type Handlers struct {
	Health  *HealthHandlers
	Vector  *VectorHandlers
	Memory  *MemoryHandlers
	Insight *InsightHandlers
	News    *NewsHandlers
	Signal  *SignalHandlers

	// MetricsRegistry, when set, mounts /metrics backed by this registry.
	MetricsRegistry *prometheus.Registry
}

// NewRouter builds the route table for the API server. Middleware is applied
// by the caller so tests can mount routes without the full chain.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", h.Health.Root)
	mux.HandleFunc("/health", h.Health.Health)
	mux.HandleFunc("/ready", h.Health.Ready)

	if h.MetricsRegistry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(h.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/api/v1/vectorize", h.Vector.Vectorize)
	mux.HandleFunc("/api/v1/context", h.Memory.SaveContext)
	mux.HandleFunc("/api/v1/search", h.Memory.Search)
	mux.HandleFunc("/api/v1/insight", h.Insight.Insight)
	mux.HandleFunc("/api/v1/feeds", h.News.ListFeeds)
	mux.HandleFunc("/api/v1/feeds/fetch", h.News.FetchFeeds)
	mux.HandleFunc("/api/v1/signals", h.Signal.Signals)
	mux.HandleFunc("/api/v1/signals/stats", h.Signal.SignalStats)

	return mux
}
