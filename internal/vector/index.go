// Package vector provides the append-only exact similarity index.
package vector

import "context"

// VectorIndex is an append-only, ordinal-addressed similarity index.
// Ordinals are assigned at insertion as the pre-call size and never change.
type VectorIndex interface {
	// Add appends vectors and returns their ordinals. The batch is applied entirely or not at all.
	Add(ctx context.Context, vectors [][]float32) ([]int, error)
	// Search returns up to k hits ordered by descending inner product.
	Search(ctx context.Context, query []float32, k int) ([]VectorResult, error)
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// VectorResult is a single index hit.
type VectorResult struct {
	Ordinal int
	Score   float64 // raw inner product; bounded only when inputs are normalized
}
