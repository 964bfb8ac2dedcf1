// Package vector defines the embedding and similarity-index abstractions
// used by the memory and signal subsystems, together with the chromem-go
// backed index implementation.
package vector

import (
	"context"
	"errors"
	"fmt"
)

// Partition names used by the engine. A partition isolates one logical
// collection of vectors from another inside the same index.
const (
	// PartitionContext holds user memory vectors.
	PartitionContext = "context"

	// PartitionNews holds news article vectors used for signal generation.
	PartitionNews = "news"
)

// Sentinel errors for collaborator failures. Handlers map these to the
// embedding_failed and vector_db_error API codes.
var (
	// ErrEmbedding indicates the embedding provider was unreachable or
	// returned no usable vector.
	ErrEmbedding = errors.New("embedding generation failed")

	// ErrIndex indicates a similarity index operation failed. It is always
	// distinguishable from a query that simply matched nothing.
	ErrIndex = errors.New("similarity index operation failed")
)

// EmbeddingError wraps a provider failure with the sentinel ErrEmbedding
// so callers can classify it with errors.Is.
func EmbeddingError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrEmbedding, err)
}

// IndexError wraps an index failure with the sentinel ErrIndex.
func IndexError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrIndex, err)
}

// Embedder converts text to a fixed-dimensionality vector.
// Implementations: GeminiEmbedder (production), MockEmbedder (tests/offline).
type Embedder interface {
	// Embed converts a single text to an embedding vector. The returned
	// vector always has Dimensions() elements on success. Inputs up to
	// 8000 characters must be accepted without truncation; truncation of
	// longer inputs is the caller's responsibility.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Match is a single similarity query result.
type Match struct {
	// ID of the stored vector.
	ID string

	// Similarity is the cosine similarity to the query vector in [0, 1].
	Similarity float64

	// Metadata is the flat metadata snapshot stored with the vector.
	// Nil when the query was issued without metadata.
	Metadata map[string]string
}

// Index is the similarity index backend. Implementations must be safe for
// concurrent use; a single Index is shared process-wide.
type Index interface {
	// Upsert stores (id, vec, metadata) in the given partition, overwriting
	// any existing entry with the same id (idempotent upsert semantics).
	Upsert(ctx context.Context, partition, id string, vec []float32, metadata map[string]string) error

	// Query returns up to topK matches from the partition, ordered by
	// similarity descending. A partition with no candidates yields an empty
	// result, not an error.
	Query(ctx context.Context, partition string, vec []float32, topK int, includeMetadata bool) ([]Match, error)

	// Count returns the number of vectors stored in the partition.
	Count(ctx context.Context, partition string) (int, error)
}
