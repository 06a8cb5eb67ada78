package vector

import (
	"fmt"

	"github.com/hyperjump/kensaku/internal/errs"
)

// IndexType represents the type of vector index to use.
type IndexType string

const (
	// IndexTypeMemory uses in-memory exact brute-force search.
	IndexTypeMemory IndexType = "memory"
)

// NewVectorIndex creates a vector index of the specified type.
// Supported types: "memory" (default). An unknown type means the backend cannot be brought up.
func NewVectorIndex(indexType string, dimensions int) (VectorIndex, error) {
	switch IndexType(indexType) {
	case IndexTypeMemory, "":
		return NewMemoryIndex(dimensions)
	default:
		return nil, errs.Unavailable("vector index backend", fmt.Errorf("unknown index type %q (supported: memory)", indexType))
	}
}
