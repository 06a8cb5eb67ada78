package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/keyword"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/store"
)

// Planner runs vector, hybrid, and keyword searches against a store.
//
// The index has no notion of tenants, so the planner asks it for
// top_k × OverfetchFactor candidates and filters afterwards. A tenant that owns a
// small share of the corpus can still come back empty when more than that many
// foreign vectors outrank its own.
type Planner struct {
	store     *store.Store
	gateway   embedding.Gateway
	overfetch int
	weights   Weights
	keyword   *keyword.SearchOptions
	logger    *zap.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets a logger for per-query debug output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// WithGateway sets the embedding gateway used by SearchText.
func WithGateway(g embedding.Gateway) Option {
	return func(p *Planner) { p.gateway = g }
}

// NewPlanner creates a planner over st. A nil cfg uses the defaults.
func NewPlanner(st *store.Store, cfg *config.SearchConfig, opts ...Option) *Planner {
	p := &Planner{
		store:     st,
		overfetch: config.DefaultOverfetchFactor,
		weights:   DefaultWeights,
		logger:    zap.NewNop(),
	}
	if cfg != nil {
		if cfg.OverfetchFactor > 0 {
			p.overfetch = cfg.OverfetchFactor
		}
		if cfg.VectorWeight != 0 || cfg.LexicalWeight != 0 {
			p.weights = Weights{Vector: cfg.VectorWeight, Lexical: cfg.LexicalWeight}
		}
		p.keyword = &keyword.SearchOptions{
			TitleBoost:   cfg.KeywordTitleBoost,
			FuzzyEnabled: cfg.KeywordFuzzy,
			Fuzziness:    cfg.KeywordFuzziness,
		}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OverfetchFactor returns the candidate multiplier.
func (p *Planner) OverfetchFactor() int {
	return p.overfetch
}

// fetchK returns min(topK × overfetch, total) without overflowing.
func (p *Planner) fetchK(topK, total int) int {
	if topK >= total || topK > total/p.overfetch {
		return total
	}
	return topK * p.overfetch
}

// Search runs a vector search, optionally blended with lexical overlap on query_text.
// It either returns the complete ranked list or an error.
func (p *Planner) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if dim := p.store.Dimensions(); len(req.QueryVector) != dim {
		return nil, &errs.DimensionMismatch{Expected: dim, Actual: len(req.QueryVector), Position: -1}
	}

	topK := req.Limit()
	tenant := req.Tenant()
	blend := req.IsHybrid() && req.QueryText != ""
	var querySet map[string]struct{}
	if blend {
		querySet = TokenSet(req.QueryText)
	}

	resp := &models.SearchResponse{Results: []models.SearchResult{}, SearchType: req.SearchType()}
	err := p.store.Read(func(r store.Reader) error {
		total := r.Size()
		if total == 0 {
			return nil
		}
		hits, err := r.SearchVectors(ctx, req.QueryVector, p.fetchK(topK, total))
		if err != nil {
			return err
		}
		resp.Candidates = len(hits)

		results := make([]models.SearchResult, 0, len(hits))
		for _, h := range hits {
			if !r.Eligible(h.Ordinal, tenant) {
				continue
			}
			entry, err := r.Lookup(h.Ordinal)
			if err != nil {
				return errs.Internal("catalog lookup", fmt.Errorf("index returned ordinal %d: %w", h.Ordinal, err))
			}
			res := models.SearchResult{
				StableID:    entry.StableID,
				Score:       h.Score,
				VectorScore: h.Score,
				Metadata:    entry.Metadata,
			}
			if blend {
				res.LexicalScore = LexicalScore(querySet, entry.Metadata.Text)
				res.Score = p.weights.Blend(h.Score, res.LexicalScore)
			}
			results = append(results, res)
		}
		resp.Results = rank(results, topK)
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.QueryTime = time.Since(start).Milliseconds()
	p.logger.Debug("search",
		zap.String("type", resp.SearchType),
		zap.Int("top_k", topK),
		zap.Bool("tenant_scoped", tenant != ""),
		zap.Int("candidates", resp.Candidates),
		zap.Int("results", len(resp.Results)))
	return resp, nil
}

// SearchText embeds the query with the gateway and runs Search with the query as query_text.
func (p *Planner) SearchText(ctx context.Context, req *models.TextSearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if p.gateway == nil {
		return nil, errs.Unavailable("embedding gateway", fmt.Errorf("not configured"))
	}
	vec, err := embedding.EmbedOne(ctx, p.gateway, req.Query)
	if err != nil {
		return nil, err
	}
	return p.Search(ctx, &models.SearchRequest{
		QueryVector: vec,
		QueryText:   req.Query,
		TopK:        req.TopK,
		Hybrid:      req.Hybrid,
		TenantID:    req.TenantID,
		UserID:      req.UserID,
	})
}

// KeywordSearch ranks stored free text against the query with the keyword index,
// applying the same tenant policy and over-fetch as Search.
func (p *Planner) KeywordSearch(ctx context.Context, req *models.KeywordSearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	topK := req.Limit()
	tenant := req.Tenant()

	resp := &models.SearchResponse{Results: []models.SearchResult{}, SearchType: models.SearchTypeKeyword}
	err := p.store.Read(func(r store.Reader) error {
		total := r.Size()
		if total == 0 {
			return nil
		}
		hits, err := r.SearchKeyword(ctx, req.Query, p.fetchK(topK, total), p.keyword)
		if err != nil {
			return errs.Internal("keyword search", err)
		}
		resp.Candidates = len(hits)

		results := make([]models.SearchResult, 0, len(hits))
		for _, h := range hits {
			entry, err := r.LookupByStableID(h.ID)
			if err != nil {
				return errs.Internal("catalog lookup", fmt.Errorf("keyword index returned %s: %w", h.ID, err))
			}
			if !r.Eligible(entry.Ordinal, tenant) {
				continue
			}
			results = append(results, models.SearchResult{
				StableID:     entry.StableID,
				Score:        h.Score,
				LexicalScore: h.Score,
				Metadata:     entry.Metadata,
			})
		}
		resp.Results = rank(results, topK)
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp.QueryTime = time.Since(start).Milliseconds()
	p.logger.Debug("keyword search",
		zap.Int("top_k", topK),
		zap.Int("candidates", resp.Candidates),
		zap.Int("results", len(resp.Results)))
	return resp, nil
}

// Stats reports store statistics including the planner's over-fetch factor.
func (p *Planner) Stats() models.StoreStats {
	st := p.store.Stats()
	st.OverfetchFactor = p.overfetch
	return st
}
