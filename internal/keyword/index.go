// Package keyword provides full-text search over the free text stored with each vector.
package keyword

import "context"

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// TitleBoost multiplies the score contribution from matches in the filename field.
	// Use 1.0 (or 0) for no boost.
	TitleBoost float64
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2). Default is 1.
	Fuzziness int
}

// Document is the indexed projection of one catalog entry.
type Document struct {
	// ID is the stable id of the vector the text belongs to.
	ID       string `json:"-"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// KeywordIndex defines keyword search operations.
type KeywordIndex interface {
	// IndexBatch indexes docs atomically: either every document is searchable afterwards or none is.
	IndexBatch(ctx context.Context, docs []Document) error
	// DeleteBatch removes documents by id.
	DeleteBatch(ctx context.Context, ids []string) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]KeywordResult, error)
	// DocCount returns the total number of documents in the index.
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}
