// Package store owns the vector index, the metadata catalog, and the keyword index
// behind a single lock.
//
// Every mutation goes through Store.Add, which holds the write lock for the whole
// keyword → index → catalog sequence, so a reader can never observe an index that
// is longer than the catalog. Readers run inside Store.Read under the read lock.
package store

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/catalog"
	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/keyword"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/vector"
)

// Store is the process-wide retrieval state.
type Store struct {
	mu      sync.RWMutex
	index   vector.VectorIndex
	catalog *catalog.Catalog
	keyword keyword.KeywordIndex
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a logger for add events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithKeywordIndex replaces the default in-memory Bleve index.
func WithKeywordIndex(k keyword.KeywordIndex) Option {
	return func(s *Store) { s.keyword = k }
}

// New constructs an empty store with a fixed dimension. It is meant to run once at
// startup, before any request is served.
func New(indexType string, dimensions int, opts ...Option) (*Store, error) {
	idx, err := vector.NewVectorIndex(indexType, dimensions)
	if err != nil {
		return nil, err
	}
	s := &Store{
		index:   idx,
		catalog: catalog.New(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.keyword == nil {
		kw, err := keyword.NewBleveIndex()
		if err != nil {
			_ = idx.Close()
			return nil, errs.Unavailable("keyword index", err)
		}
		s.keyword = kw
	}
	return s, nil
}

// Dimensions returns the fixed vector length.
func (s *Store) Dimensions() int {
	return s.index.Dimensions()
}

// Size returns the number of stored vectors.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Len()
}

// Add stores vectors with their metadata and returns the assigned stable ids.
// The batch is validated before the lock is taken and is applied entirely or not at all.
func (s *Store) Add(ctx context.Context, vectors [][]float32, metadata []models.Metadata) (*models.AddResponse, error) {
	if err := s.validate(vectors, metadata); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.catalog.Len()
	if n := s.index.Size(); n != base {
		return nil, errs.Internal("store add", fmt.Errorf("index holds %d vectors but catalog holds %d", n, base))
	}

	ids := make([]string, len(vectors))
	docs := make([]keyword.Document, len(vectors))
	for i, md := range metadata {
		ids[i] = catalog.StableID(base + i)
		docs[i] = keyword.Document{ID: ids[i], Text: md.Text, Filename: stringField(md, "filename")}
	}
	if err := s.keyword.IndexBatch(ctx, docs); err != nil {
		return nil, errs.Internal("keyword index", err)
	}

	ordinals, err := s.index.Add(ctx, vectors)
	if err != nil {
		s.rollbackKeyword(ctx, ids)
		return nil, err
	}
	if _, err := s.catalog.Append(ordinals, metadata); err != nil {
		s.rollbackKeyword(ctx, ids)
		return nil, err
	}

	total := s.catalog.Len()
	s.logger.Debug("vectors added",
		zap.Int("added", len(ids)),
		zap.Int("total", total),
		zap.String("first_id", ids[0]))
	return &models.AddResponse{Added: len(ids), TotalVectors: total, IDs: ids}, nil
}

func (s *Store) validate(vectors [][]float32, metadata []models.Metadata) error {
	if len(vectors) == 0 {
		return errs.ErrEmptyBatch
	}
	if len(vectors) != len(metadata) {
		return &errs.CountMismatch{Vectors: len(vectors), Metadata: len(metadata)}
	}
	dim := s.index.Dimensions()
	for i, v := range vectors {
		if len(v) != dim {
			return &errs.DimensionMismatch{Expected: dim, Actual: len(v), Position: i}
		}
	}
	return nil
}

func (s *Store) rollbackKeyword(ctx context.Context, ids []string) {
	if err := s.keyword.DeleteBatch(ctx, ids); err != nil {
		s.logger.Error("keyword rollback failed", zap.Strings("ids", ids), zap.Error(err))
	}
}

// Read runs fn under the read lock. Searches run concurrently with each other
// and never overlap an add.
func (s *Store) Read(fn func(Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(reader{s})
}

// LookupByStableID returns the catalog entry for id.
func (s *Store) LookupByStableID(id string) (models.VectorEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.LookupByStableID(id)
}

// Stats describes the store. OverfetchFactor is left for the planner to fill in.
func (s *Store) Stats() models.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.StoreStats{
		TotalVectors: s.catalog.Len(),
		Dimensions:   s.index.Dimensions(),
		IndexType:    s.index.Type(),
		Tenants:      s.catalog.Tenants(),
	}
}

// Close releases the index and the keyword index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kwErr := s.keyword.Close()
	if err := s.index.Close(); err != nil {
		return err
	}
	return kwErr
}

func stringField(md models.Metadata, key string) string {
	v, ok := md.Extra[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
