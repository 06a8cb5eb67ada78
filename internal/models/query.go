package models

import (
	"fmt"
	"strings"

	"github.com/hyperjump/kensaku/internal/errs"
)

// DefaultTopK is used when a search request omits top_k.
const DefaultTopK = 10

// Search type tags returned with every response.
const (
	SearchTypeHybrid  = "hybrid"
	SearchTypeVector  = "vector"
	SearchTypeKeyword = "keyword"
)

// AddRequest is the body of an add: parallel vectors and metadata.
type AddRequest struct {
	Vectors  [][]float32 `json:"vectors"`
	Metadata []Metadata  `json:"metadata"`
}

// AddResponse reports how many vectors were added and the new total.
type AddResponse struct {
	Added        int      `json:"added"`
	TotalVectors int      `json:"total_vectors"`
	IDs          []string `json:"ids"`
}

// SearchRequest is a vector (optionally hybrid) search.
// TopK and Hybrid are pointers so an omitted field can be told apart from an explicit zero value.
type SearchRequest struct {
	QueryVector []float32 `json:"query_vector"`
	QueryText   string    `json:"query_text,omitempty"`
	TopK        *int      `json:"top_k,omitempty"`
	Hybrid      *bool     `json:"hybrid,omitempty"`
	TenantID    string    `json:"tenant_id,omitempty"`
	// UserID is the field name older clients send for the tenant.
	UserID string `json:"user_id,omitempty"`
}

// Limit returns the requested result count, defaulting to DefaultTopK.
func (q *SearchRequest) Limit() int {
	if q.TopK == nil {
		return DefaultTopK
	}
	return *q.TopK
}

// IsHybrid returns the hybrid flag, defaulting to true.
func (q *SearchRequest) IsHybrid() bool {
	return q.Hybrid == nil || *q.Hybrid
}

// Tenant returns the tenant filter; tenant_id wins over user_id.
func (q *SearchRequest) Tenant() string {
	if q.TenantID != "" {
		return q.TenantID
	}
	return q.UserID
}

// SearchType returns the tag the response carries for this request.
func (q *SearchRequest) SearchType() string {
	if q.IsHybrid() {
		return SearchTypeHybrid
	}
	return SearchTypeVector
}

// Validate checks the scalar arguments. Vector dimension is checked by the planner.
func (q *SearchRequest) Validate() error {
	if k := q.Limit(); k <= 0 {
		return errs.InvalidArgument("top_k must be positive, got %d", k)
	}
	return nil
}

// TextSearchRequest is a search whose query vector is produced by the embedding gateway.
type TextSearchRequest struct {
	Query    string `json:"query"`
	TopK     *int   `json:"top_k,omitempty"`
	Hybrid   *bool  `json:"hybrid,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Validate ensures the query is non-empty.
func (q *TextSearchRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", errs.ErrInvalidArgument)
	}
	return nil
}

// KeywordSearchRequest is a lexical-only search over stored free text.
type KeywordSearchRequest struct {
	Query    string `json:"query"`
	TopK     *int   `json:"top_k,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Limit returns the requested result count, defaulting to DefaultTopK.
func (q *KeywordSearchRequest) Limit() int {
	if q.TopK == nil {
		return DefaultTopK
	}
	return *q.TopK
}

// Tenant returns the tenant filter; tenant_id wins over user_id.
func (q *KeywordSearchRequest) Tenant() string {
	if q.TenantID != "" {
		return q.TenantID
	}
	return q.UserID
}

// Validate checks the query and top_k.
func (q *KeywordSearchRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("%w: query cannot be empty", errs.ErrInvalidArgument)
	}
	if k := q.Limit(); k <= 0 {
		return errs.InvalidArgument("top_k must be positive, got %d", k)
	}
	return nil
}
