package vector

import (
	"context"
	"math"
	"testing"
)

// TestMockEmbedder_Deterministic tests that identical inputs produce
// identical vectors.
func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	emb := NewMockEmbedder(128)

	a, err := emb.Embed(ctx, "the same text")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	b, err := emb.Embed(ctx, "the same text")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at index %d: %f != %f", i, a[i], b[i])
		}
	}
}

// TestMockEmbedder_DistinctTexts tests that different inputs produce
// different vectors.
func TestMockEmbedder_DistinctTexts(t *testing.T) {
	ctx := context.Background()
	emb := NewMockEmbedder(128)

	a, _ := emb.Embed(ctx, "first text")
	b, _ := emb.Embed(ctx, "second text")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical embeddings")
	}
}

// TestMockEmbedder_UnitNorm tests that output vectors are normalized.
func TestMockEmbedder_UnitNorm(t *testing.T) {
	ctx := context.Background()
	emb := NewMockEmbedder(64)

	vec, err := emb.Embed(ctx, "normalize me")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("expected unit norm, got %f", norm)
	}
}

// TestMockEmbedder_DefaultDimensions tests the 768 default.
func TestMockEmbedder_DefaultDimensions(t *testing.T) {
	emb := NewMockEmbedder(0)
	if emb.Dimensions() != 768 {
		t.Errorf("expected default 768 dimensions, got %d", emb.Dimensions())
	}

	vec, err := emb.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 768 {
		t.Errorf("expected 768-element vector, got %d", len(vec))
	}
}
