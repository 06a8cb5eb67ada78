package store

import (
	"context"

	"github.com/hyperjump/kensaku/internal/keyword"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/vector"
)

// Reader is the read-only view handed to Store.Read callbacks.
// It must not be retained after the callback returns.
type Reader interface {
	// Size returns the number of stored vectors.
	Size() int
	Dimensions() int
	// SearchVectors returns up to k index hits by descending inner product.
	SearchVectors(ctx context.Context, query []float32, k int) ([]vector.VectorResult, error)
	// SearchKeyword returns up to limit keyword hits keyed by stable id.
	SearchKeyword(ctx context.Context, query string, limit int, opts *keyword.SearchOptions) ([]keyword.KeywordResult, error)
	Lookup(ordinal int) (models.VectorEntry, error)
	LookupByStableID(id string) (models.VectorEntry, error)
	// Eligible reports whether ordinal is visible to tenant.
	Eligible(ordinal int, tenant string) bool
}

type reader struct {
	s *Store
}

func (r reader) Size() int { return r.s.catalog.Len() }

func (r reader) Dimensions() int { return r.s.index.Dimensions() }

func (r reader) SearchVectors(ctx context.Context, query []float32, k int) ([]vector.VectorResult, error) {
	return r.s.index.Search(ctx, query, k)
}

func (r reader) SearchKeyword(ctx context.Context, query string, limit int, opts *keyword.SearchOptions) ([]keyword.KeywordResult, error) {
	return r.s.keyword.Search(ctx, query, limit, opts)
}

func (r reader) Lookup(ordinal int) (models.VectorEntry, error) {
	return r.s.catalog.Lookup(ordinal)
}

func (r reader) LookupByStableID(id string) (models.VectorEntry, error) {
	return r.s.catalog.LookupByStableID(id)
}

func (r reader) Eligible(ordinal int, tenant string) bool {
	return r.s.catalog.Eligible(ordinal, tenant)
}
