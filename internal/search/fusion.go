// Package search plans queries over the store: over-fetch, tenant filter, score blend, rank.
package search

import (
	"sort"

	"github.com/hyperjump/kensaku/internal/models"
)

// Weights blends vector similarity with lexical overlap.
type Weights struct {
	Vector  float64
	Lexical float64
}

// DefaultWeights is the stock 0.7/0.3 blend.
var DefaultWeights = Weights{Vector: 0.7, Lexical: 0.3}

// Blend returns the weighted hybrid score.
func (w Weights) Blend(vectorScore, lexicalScore float64) float64 {
	return w.Vector*vectorScore + w.Lexical*lexicalScore
}

// rank orders results by descending score, keeping candidate order for ties, and truncates to limit.
func rank(results []models.SearchResult, limit int) []models.SearchResult {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
