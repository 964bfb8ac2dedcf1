// Package memory stores user context snippets in the vector index and
// retrieves semantically similar past contexts.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/pai-labs/engine/internal/vector"
)

const (
	// DefaultSearchTopK is the number of memories returned when unspecified.
	DefaultSearchTopK = 3

	// MaxSearchTopK bounds how many memories one search may request.
	MaxSearchTopK = 20
)

// Memory is a stored user context with its similarity to a search query.
type Memory struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Store persists and searches user context memories. Safe for concurrent use.
type Store struct {
	embedder vector.Embedder
	index    vector.Index
	logger   *slog.Logger
}

// NewStore creates a memory store over the given embedder and index.
func NewStore(embedder vector.Embedder, index vector.Index, logger *slog.Logger) *Store {
	return &Store{embedder: embedder, index: index, logger: logger}
}

// Save embeds text and stores it as a new memory, returning its id.
func (s *Store) Save(ctx context.Context, text string) (string, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed context: %w", err)
	}

	id := uuid.NewString()
	metadata := map[string]string{
		"text":       text,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.index.Upsert(ctx, vector.PartitionContext, id, vec, metadata); err != nil {
		return "", fmt.Errorf("store context: %w", err)
	}

	s.logger.Info("context stored", "memory_id", id, "chars", len(text))
	return id, nil
}

// Search returns up to topK memories most similar to query, sorted by
// similarity descending. topK is clamped to [1, MaxSearchTopK].
func (s *Store) Search(ctx context.Context, query string, topK int) ([]Memory, error) {
	if topK < 1 {
		topK = DefaultSearchTopK
	}
	if topK > MaxSearchTopK {
		topK = MaxSearchTopK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, vector.PartitionContext, vec, topK, true)
	if err != nil {
		return nil, fmt.Errorf("search contexts: %w", err)
	}

	memories := make([]Memory, 0, len(matches))
	for _, match := range matches {
		memory := Memory{
			ID:         match.ID,
			Text:       match.Metadata["text"],
			Similarity: math.Round(match.Similarity*1000) / 1000,
		}
		if raw := match.Metadata["created_at"]; raw != "" {
			if created, err := time.Parse(time.RFC3339, raw); err == nil {
				memory.CreatedAt = created.UTC()
			}
		}
		memories = append(memories, memory)
	}
	return memories, nil
}

// Count returns the number of stored memories.
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.index.Count(ctx, vector.PartitionContext)
}
