package signal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/pai-labs/engine/internal/news"
	"github.com/pai-labs/engine/internal/ranking"
	"github.com/pai-labs/engine/internal/stats"
	"github.com/pai-labs/engine/internal/vector"
)

const (
	// DefaultTopK is the number of signals returned when unspecified.
	DefaultTopK = 10

	// DefaultMinScore is the relevance cutoff applied when unspecified.
	DefaultMinScore = 3.0

	// maxEmbedChars caps the text sent to the embedding provider per article.
	maxEmbedChars = 8000

	// Metadata projection limits for stored articles.
	maxMetaTitle   = 500
	maxMetaSummary = 1000
)

// ErrInvalidRequest marks ranking requests rejected before any provider call.
var ErrInvalidRequest = errors.New("invalid signal request")

// Status reports how a ranking request concluded.
type Status int

const (
	// StatusOk means the pipeline ran and produced at least one signal.
	StatusOk Status = iota

	// StatusEmpty means the pipeline ran but nothing cleared the cutoff.
	StatusEmpty

	// StatusFailed means an embedding or index failure aborted the pipeline.
	StatusFailed
)

// String returns the status name for logs.
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the typed outcome of a ranking request. A failed pipeline is
// distinguishable from one that genuinely matched nothing; callers decide
// whether to degrade or surface Err.
type Result struct {
	Status  Status
	Signals []news.Signal
	Err     error
}

// Service ranks news articles against a user context and ingests crawled
// articles into the index. Safe for concurrent use.
type Service struct {
	embedder vector.Embedder
	index    vector.Index
	logger   *slog.Logger
	metrics  *Metrics
	stats    *stats.IngestStats
}

// NewService creates a signal service. metrics and ingestStats may be nil,
// in which case unregistered/free-standing instances are created.
func NewService(embedder vector.Embedder, index vector.Index, logger *slog.Logger, metrics *Metrics, ingestStats *stats.IngestStats) *Service {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if ingestStats == nil {
		ingestStats = stats.NewIngestStats()
	}
	return &Service{
		embedder: embedder,
		index:    index,
		logger:   logger,
		metrics:  metrics,
		stats:    ingestStats,
	}
}

// Stats returns the ingestion statistics tracker.
func (s *Service) Stats() *stats.IngestStats {
	return s.stats
}

// Ingest embeds each article and upserts it into the news partition.
// Individual failures are logged, counted, and skipped so one bad article
// never aborts a batch. Returns the number of articles stored.
func (s *Service) Ingest(ctx context.Context, articles []news.NewsArticle) int {
	processed := 0
	for _, article := range articles {
		start := time.Now()
		if err := s.ingestOne(ctx, article); err != nil {
			s.logger.Error("article ingestion failed",
				"article_id", article.ID,
				"url", article.URL,
				"error", err,
			)
			s.metrics.IncIngestErrors()
			s.stats.RecordFailed()
			continue
		}
		s.metrics.IncArticlesIngested()
		s.metrics.ObserveIngestLatency(time.Since(start).Seconds())
		s.stats.RecordProcessed()
		processed++
	}

	s.logger.Info("batch ingestion complete",
		"total", len(articles),
		"processed", processed,
		"failed", len(articles)-processed,
	)
	return processed
}

func (s *Service) ingestOne(ctx context.Context, article news.NewsArticle) error {
	text := truncate(article.Title+"\n\n"+article.Summary, maxEmbedChars)

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed article: %w", err)
	}

	metadata := map[string]string{
		"title":   truncate(article.Title, maxMetaTitle),
		"summary": truncate(article.Summary, maxMetaSummary),
		"url":     article.URL,
		"source":  article.Source,
		"type":    "news",
	}
	if article.PublishedAt != nil {
		metadata["published_at"] = article.PublishedAt.UTC().Format(time.RFC3339)
	}

	if err := s.index.Upsert(ctx, vector.PartitionNews, article.ID, vec, metadata); err != nil {
		return fmt.Errorf("store article: %w", err)
	}
	return nil
}

// Generate ranks stored articles against userContext. topK and minScore
// outside their domains are rejected before any provider call. Embedding
// and index failures yield a Failed result rather than an empty one.
func (s *Service) Generate(ctx context.Context, userContext string, topK int, minScore float64) Result {
	start := time.Now()
	defer func() {
		s.metrics.ObserveGenerateLatency(time.Since(start).Seconds())
	}()

	if err := validateRequest(userContext, topK, minScore); err != nil {
		s.metrics.IncGenerationFailures()
		return Result{Status: StatusFailed, Err: err}
	}

	vec, err := s.embedder.Embed(ctx, userContext)
	if err != nil {
		s.logger.Error("context embedding failed", "error", err)
		s.metrics.IncGenerationFailures()
		return Result{Status: StatusFailed, Err: err}
	}

	// Over-fetch so the cutoff still leaves topK candidates.
	matches, err := s.index.Query(ctx, vector.PartitionNews, vec, topK*2, true)
	if err != nil {
		s.logger.Error("news index query failed", "error", err)
		s.metrics.IncGenerationFailures()
		return Result{Status: StatusFailed, Err: err}
	}

	signals := make([]news.Signal, 0, len(matches))
	for _, match := range matches {
		score := ranking.Score(match.Similarity)
		if score < minScore {
			continue
		}
		signals = append(signals, news.Signal{
			Article:    articleFromMetadata(match.ID, match.Metadata),
			Score:      round(score, 1),
			Similarity: round(match.Similarity, 3),
		})
	}

	sortSignals(signals)
	if len(signals) > topK {
		signals = signals[:topK]
	}

	if len(signals) == 0 {
		s.logger.Info("no signals above cutoff", "min_score", minScore, "candidates", len(matches))
		return Result{Status: StatusEmpty, Signals: []news.Signal{}}
	}

	s.metrics.AddSignalsGenerated(len(signals))
	s.logger.Info("signals generated",
		"count", len(signals),
		"top_k", topK,
		"min_score", minScore,
	)
	return Result{Status: StatusOk, Signals: signals}
}

func validateRequest(userContext string, topK int, minScore float64) error {
	if userContext == "" {
		return fmt.Errorf("%w: empty user context", ErrInvalidRequest)
	}
	if topK < 1 {
		return fmt.Errorf("%w: top_k must be >= 1, got %d", ErrInvalidRequest, topK)
	}
	if minScore < 0 || minScore > 10 {
		return fmt.Errorf("%w: min_score must be in [0, 10], got %g", ErrInvalidRequest, minScore)
	}
	return nil
}

// sortSignals orders by score descending; ties break on published_at
// descending, then id ascending, so equal-scored results are deterministic.
func sortSignals(signals []news.Signal) {
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		pi, pj := publishedOrZero(signals[i].Article), publishedOrZero(signals[j].Article)
		if !pi.Equal(pj) {
			return pi.After(pj)
		}
		return signals[i].Article.ID < signals[j].Article.ID
	})
}

// articleFromMetadata reconstructs the article view stored at ingestion
// time. Missing fields fall back to presentable defaults.
func articleFromMetadata(id string, metadata map[string]string) news.NewsArticle {
	article := news.NewsArticle{
		ID:      id,
		Title:   metadata["title"],
		URL:     metadata["url"],
		Source:  metadata["source"],
		Summary: metadata["summary"],
	}
	if article.Title == "" {
		article.Title = "Untitled"
	}
	if article.Source == "" {
		article.Source = "Unknown"
	}
	if raw := metadata["published_at"]; raw != "" {
		if published, err := time.Parse(time.RFC3339, raw); err == nil {
			published = published.UTC()
			article.PublishedAt = &published
		}
	}
	return article
}

func publishedOrZero(a news.NewsArticle) time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return time.Time{}
}

// truncate caps s at limit bytes without splitting a multi-byte rune, so
// truncated text stays valid UTF-8 for the embedding provider.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
