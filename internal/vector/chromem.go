package vector

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// ChromemIndex implements Index on top of chromem-go, a pure Go embedded
// vector database. Each partition maps to its own chromem collection.
//
// chromem keeps documents in memory and replaces entries that share an ID,
// which gives us the idempotent upsert semantics the ingestion adapter
// relies on.
type ChromemIndex struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// NewChromemIndex creates an empty in-process index.
func NewChromemIndex() *ChromemIndex {
	return &ChromemIndex{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

// getOrCreateCollection returns the collection backing a partition,
// creating it on first use.
func (x *ChromemIndex) getOrCreateCollection(partition string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, exists := x.collections[partition]
	x.mu.RUnlock()
	if exists {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	// Double-check after acquiring the write lock.
	if col, exists := x.collections[partition]; exists {
		return col, nil
	}

	// No embedding func: callers always provide vectors. Default cosine
	// similarity is what the scoring pipeline expects.
	col, err := x.db.GetOrCreateCollection(partition, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", partition, err)
	}
	x.collections[partition] = col
	return col, nil
}

// Upsert stores a vector with its metadata, overwriting any entry with the
// same id in the partition.
func (x *ChromemIndex) Upsert(ctx context.Context, partition, id string, vec []float32, metadata map[string]string) error {
	col, err := x.getOrCreateCollection(partition)
	if err != nil {
		return IndexError(err)
	}

	doc := chromem.Document{
		ID:        id,
		Embedding: vec,
		Metadata:  metadata,
	}
	// chromem requires non-empty content or embedding; content doubles as
	// a human-readable fallback when present in metadata.
	if text, ok := metadata["text"]; ok {
		doc.Content = text
	} else {
		doc.Content = id
	}

	if err := col.AddDocument(ctx, doc); err != nil {
		return IndexError(fmt.Errorf("add document %q: %w", id, err))
	}
	return nil
}

// Query returns up to topK matches ordered by similarity descending.
func (x *ChromemIndex) Query(ctx context.Context, partition string, vec []float32, topK int, includeMetadata bool) ([]Match, error) {
	if topK < 1 {
		return nil, IndexError(fmt.Errorf("topK must be >= 1 (got %d)", topK))
	}

	col, err := x.getOrCreateCollection(partition)
	if err != nil {
		return nil, IndexError(err)
	}

	// chromem rejects nResults larger than the collection, so clamp.
	n := topK
	if count := col.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, vec, n, nil, nil)
	if err != nil {
		return nil, IndexError(fmt.Errorf("query %q: %w", partition, err))
	}

	matches := make([]Match, 0, len(results))
	for _, res := range results {
		m := Match{
			ID:         res.ID,
			Similarity: float64(res.Similarity),
		}
		if includeMetadata {
			m.Metadata = res.Metadata
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Count returns the number of vectors stored in a partition.
func (x *ChromemIndex) Count(ctx context.Context, partition string) (int, error) {
	col, err := x.getOrCreateCollection(partition)
	if err != nil {
		return 0, IndexError(err)
	}
	return col.Count(), nil
}
