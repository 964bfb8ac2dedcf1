// Package stats provides utilities for tracking ingestion statistics.
package stats

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// IngestStats tracks cumulative statistics for article ingestion.
// All operations are thread-safe.
type IngestStats struct {
	processed int64 // Articles embedded and stored
	failed    int64 // Articles skipped due to errors

	mu        sync.RWMutex
	lastCrawl time.Time
}

// NewIngestStats creates a new IngestStats instance.
func NewIngestStats() *IngestStats {
	return &IngestStats{}
}

// RecordProcessed increments the processed counter.
func (s *IngestStats) RecordProcessed() {
	atomic.AddInt64(&s.processed, 1)
}

// RecordFailed increments the failed counter.
func (s *IngestStats) RecordFailed() {
	atomic.AddInt64(&s.failed, 1)
}

// RecordCrawl marks the completion time of the most recent crawl.
func (s *IngestStats) RecordCrawl(at time.Time) {
	s.mu.Lock()
	s.lastCrawl = at
	s.mu.Unlock()
}

// Processed returns the total number of articles stored.
func (s *IngestStats) Processed() int64 {
	return atomic.LoadInt64(&s.processed)
}

// Failed returns the total number of articles that could not be stored.
func (s *IngestStats) Failed() int64 {
	return atomic.LoadInt64(&s.failed)
}

// Total returns the total number of articles attempted.
func (s *IngestStats) Total() int64 {
	return s.Processed() + s.Failed()
}

// LastCrawl returns the completion time of the most recent crawl, or the
// zero time if no crawl has run.
func (s *IngestStats) LastCrawl() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCrawl
}

// Reset resets all counters to zero.
func (s *IngestStats) Reset() {
	atomic.StoreInt64(&s.processed, 0)
	atomic.StoreInt64(&s.failed, 0)
	s.mu.Lock()
	s.lastCrawl = time.Time{}
	s.mu.Unlock()
}

// String returns a human-readable summary of the statistics.
func (s *IngestStats) String() string {
	return fmt.Sprintf("processed=%d failed=%d total=%d", s.Processed(), s.Failed(), s.Total())
}

// LogSummary logs a summary of ingestion statistics at INFO level.
// Useful for periodic reporting during crawls.
func (s *IngestStats) LogSummary(logger *slog.Logger, source string) {
	logger.Info("ingestion statistics",
		"source", source,
		"processed", s.Processed(),
		"failed", s.Failed(),
		"total", s.Total(),
	)
}
