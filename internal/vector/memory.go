package vector

import (
	"container/heap"
	"context"
	"sync"

	"github.com/hyperjump/kensaku/internal/errs"
)

// MemoryIndex is an in-memory exact index using brute-force inner product search.
// Vectors are stored in one contiguous slab; ordinal i occupies data[i*dim:(i+1)*dim].
type MemoryIndex struct {
	dimensions int
	data       []float32
	count      int
	mu         sync.RWMutex
}

// NewMemoryIndex creates an in-memory vector index with the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, errs.InvalidArgument("dimensions must be positive, got %d", dimensions)
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return string(IndexTypeMemory)
}

// Dimensions returns the fixed vector length.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Add appends vectors and returns the ordinals assigned to them.
// Every vector is checked before the first one is appended.
func (m *MemoryIndex) Add(ctx context.Context, vectors [][]float32) ([]int, error) {
	if len(vectors) == 0 {
		return nil, errs.ErrEmptyBatch
	}
	for i, v := range vectors {
		if len(v) != m.dimensions {
			return nil, &errs.DimensionMismatch{Expected: m.dimensions, Actual: len(v), Position: i}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ordinals := make([]int, len(vectors))
	for i, v := range vectors {
		m.data = append(m.data, v...)
		ordinals[i] = m.count
		m.count++
	}
	return ordinals, nil
}

// Search returns the top-k vectors by inner product. Equal scores are ordered by ascending ordinal.
// k is clamped to the index size; an empty index yields an empty result.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]VectorResult, error) {
	if len(query) != m.dimensions {
		return nil, &errs.DimensionMismatch{Expected: m.dimensions, Actual: len(query), Position: -1}
	}
	if k < 0 {
		return nil, errs.InvalidArgument("k must not be negative, got %d", k)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k > m.count {
		k = m.count
	}
	if k == 0 {
		return []VectorResult{}, nil
	}
	q := &resultQueue{}
	for ord := 0; ord < m.count; ord++ {
		vec := m.data[ord*m.dimensions : (ord+1)*m.dimensions]
		q.pushWithLimit(VectorResult{Ordinal: ord, Score: InnerProduct(query, vec)}, k)
	}
	results := make([]VectorResult, q.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(q).(VectorResult)
	}
	return results, nil
}

// Vector returns a copy of the vector stored at ordinal.
func (m *MemoryIndex) Vector(ordinal int) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ordinal < 0 || ordinal >= m.count {
		return nil, errs.NotFound("ordinal %d out of range [0,%d)", ordinal, m.count)
	}
	out := make([]float32, m.dimensions)
	copy(out, m.data[ordinal*m.dimensions:(ordinal+1)*m.dimensions])
	return out, nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
