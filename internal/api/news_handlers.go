package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pai-labs/engine/internal/news"
	"github.com/pai-labs/engine/internal/signal"
)

// ArticleFetcher fetches articles from configured feed sources.
// Implemented by news.Crawler.
type ArticleFetcher interface {
	FetchAll(ctx context.Context, feeds []news.FeedSource, limitPerFeed int) []news.NewsArticle
}

// NewsHandlers holds dependencies for feed crawling HTTP handlers.
type NewsHandlers struct {
	fetcher ArticleFetcher
	signals *signal.Service
	feeds   []news.FeedSource
}

// NewNewsHandlers creates a new NewsHandlers instance.
func NewNewsHandlers(fetcher ArticleFetcher, signals *signal.Service, feeds []news.FeedSource) *NewsHandlers {
	return &NewsHandlers{
		fetcher: fetcher,
		signals: signals,
		feeds:   feeds,
	}
}

// FeedsResponse represents the response for GET /api/v1/feeds.
type FeedsResponse struct {
	Feeds []news.FeedSource `json:"feeds"`
	Count int               `json:"count"`
}

// FetchRequest represents the optional request body for POST /api/v1/feeds/fetch.
type FetchRequest struct {
	LimitPerFeed int `json:"limit_per_feed"`
}

// FetchResponse represents the response for POST /api/v1/feeds/fetch.
type FetchResponse struct {
	Fetched   int      `json:"fetched"`
	Processed int      `json:"processed"`
	Sources   []string `json:"sources"`
}

// ListFeeds handles GET /api/v1/feeds - returns the configured feed sources.
func (h *NewsHandlers) ListFeeds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, FeedsResponse{
		Feeds: h.feeds,
		Count: len(h.feeds),
	})
}

// FetchFeeds handles POST /api/v1/feeds/fetch - crawls enabled feeds and
// ingests the fetched articles into the news partition.
func (h *NewsHandlers) FetchFeeds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	// Body is optional; an empty body means defaults.
	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body")
		return
	}
	if req.LimitPerFeed < 0 {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "limit_per_feed must be positive")
		return
	}
	if req.LimitPerFeed == 0 {
		req.LimitPerFeed = news.DefaultLimitPerFeed
	}

	articles := h.fetcher.FetchAll(r.Context(), h.feeds, req.LimitPerFeed)
	processed := h.signals.Ingest(r.Context(), articles)
	h.signals.Stats().RecordCrawl(time.Now())

	sources := make([]string, 0, len(h.feeds))
	seen := make(map[string]bool)
	for _, article := range articles {
		if !seen[article.Source] {
			seen[article.Source] = true
			sources = append(sources, article.Source)
		}
	}

	slog.InfoContext(r.Context(), "feed fetch complete",
		"fetched", len(articles),
		"processed", processed,
	)

	writeJSON(w, r, http.StatusOK, FetchResponse{
		Fetched:   len(articles),
		Processed: processed,
		Sources:   sources,
	})
}
