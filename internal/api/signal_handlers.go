package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pai-labs/engine/internal/news"
	"github.com/pai-labs/engine/internal/signal"
	"github.com/pai-labs/engine/internal/vector"
)

// SignalHandlers holds dependencies for signal ranking HTTP handlers.
type SignalHandlers struct {
	service   *signal.Service
	index     vector.Index
	feedCount int
}

// NewSignalHandlers creates a new SignalHandlers instance.
func NewSignalHandlers(service *signal.Service, index vector.Index, feedCount int) *SignalHandlers {
	return &SignalHandlers{
		service:   service,
		index:     index,
		feedCount: feedCount,
	}
}

// SignalsResponse represents the response for POST /api/v1/signals.
type SignalsResponse struct {
	Signals []news.Signal `json:"signals"`
	Count   int           `json:"count"`
	Status  string        `json:"status"`
}

// SignalStatsResponse represents the response for GET /api/v1/signals/stats.
type SignalStatsResponse struct {
	NewsArticles int    `json:"news_articles"`
	Feeds        int    `json:"feeds"`
	LastCrawl    string `json:"last_crawl,omitempty"`
	Status       string `json:"status"`
}

// Signals handles POST /api/v1/signals - ranks ingested news against the
// user context in the request body. Query parameters: top_k (default 10),
// min_score (default 3.0).
func (h *SignalHandlers) Signals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	text, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	topK := signal.DefaultTopK
	if raw := query.Get("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "top_k must be a positive integer")
			return
		}
		topK = parsed
	}

	minScore := signal.DefaultMinScore
	if raw := query.Get("min_score"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 10 {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "min_score must be between 0 and 10")
			return
		}
		minScore = parsed
	}

	result := h.service.Generate(r.Context(), text, topK, minScore)

	// Failed pipelines degrade to zero signals rather than erroring the
	// request; the failure is visible in logs and metrics. Rejected requests
	// are the caller's fault and do get an error response.
	if result.Status == signal.StatusFailed {
		if errors.Is(result.Err, signal.ErrInvalidRequest) {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, result.Err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "signal generation failed", "error", result.Err)
	}

	signals := result.Signals
	if signals == nil {
		signals = []news.Signal{}
	}

	writeJSON(w, r, http.StatusOK, SignalsResponse{
		Signals: signals,
		Count:   len(signals),
		Status:  result.Status.String(),
	})
}

// SignalStats handles GET /api/v1/signals/stats - reports the state of the
// news partition.
func (h *SignalHandlers) SignalStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	count, err := h.index.Count(r.Context(), vector.PartitionNews)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to count news partition", "error", err)
		WriteError(w, r, http.StatusInternalServerError, ErrCodeVectorDB, "Vector index operation failed")
		return
	}

	resp := SignalStatsResponse{
		NewsArticles: count,
		Feeds:        h.feedCount,
		Status:       "ok",
	}
	if last := h.service.Stats().LastCrawl(); !last.IsZero() {
		resp.LastCrawl = last.UTC().Format(time.RFC3339)
	}

	writeJSON(w, r, http.StatusOK, resp)
}
