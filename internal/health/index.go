package health

import (
	"context"

	"github.com/pai-labs/engine/internal/vector"
)

// IndexChecker implements health checking for the similarity index.
type IndexChecker struct {
	index vector.Index
}

// NewIndexChecker creates a new similarity index health checker.
func NewIndexChecker(index vector.Index) *IndexChecker {
	return &IndexChecker{
		index: index,
	}
}

// HealthCheck verifies the index is reachable by counting the memory partition.
func (c *IndexChecker) HealthCheck(ctx context.Context) error {
	_, err := c.index.Count(ctx, vector.PartitionContext)
	return err
}
