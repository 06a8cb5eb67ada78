package search

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/store"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func newStore(t *testing.T, dims int) *store.Store {
	t.Helper()
	st, err := store.New("memory", dims)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func ids(results []models.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.StableID
	}
	return out
}

func TestSearch_TenantIsolationEndToEnd(t *testing.T) {
	const dims = 384
	st := newStore(t, dims)
	gw := embedding.NewMockGateway(dims)
	ctx := context.Background()

	vecs, err := gw.Embed(ctx, []string{"cats are great", "dogs are great", "untagged"})
	require.NoError(t, err)
	var md []models.Metadata
	require.NoError(t, json.Unmarshal([]byte(`[{"user_id":"u1","text":"cats are great"},{"user_id":"u2","text":"dogs are great"},{}]`), &md))
	_, err = st.Add(ctx, vecs, md)
	require.NoError(t, err)

	p := NewPlanner(st, nil)
	resp, err := p.Search(ctx, &models.SearchRequest{
		QueryVector: vecs[0],
		TenantID:    "u1",
		Hybrid:      boolPtr(false),
		TopK:        intPtr(2),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "vec_0", resp.Results[0].StableID)
	assert.NotContains(t, ids(resp.Results), "vec_1")
	assert.LessOrEqual(t, len(resp.Results), 2)
	assert.Equal(t, models.SearchTypeVector, resp.SearchType)
}

func TestSearch_HybridBlend(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx,
		[][]float32{{0.9, float32(math.Sqrt(1 - 0.81))}},
		[]models.Metadata{{Text: "Cats dogs"}})
	require.NoError(t, err)

	p := NewPlanner(st, nil)
	resp, err := p.Search(ctx, &models.SearchRequest{
		QueryVector: []float32{1, 0},
		QueryText:   "cats birds",
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	r := resp.Results[0]
	assert.InDelta(t, 0.9, r.VectorScore, 1e-6)
	assert.InDelta(t, 0.5, r.LexicalScore, 1e-9)
	assert.InDelta(t, 0.78, r.Score, 1e-6)
	assert.Equal(t, models.SearchTypeHybrid, resp.SearchType)

	// hybrid=false ignores query_text.
	resp, err = p.Search(ctx, &models.SearchRequest{
		QueryVector: []float32{1, 0},
		QueryText:   "cats birds",
		Hybrid:      boolPtr(false),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, resp.Results[0].Score, 1e-6)
	assert.Equal(t, 0.0, resp.Results[0].LexicalScore)
}

func TestSearch_HybridWithoutTextIsVectorScore(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx, [][]float32{{0.5, 0}}, []models.Metadata{{Text: "x"}})
	require.NoError(t, err)

	resp, err := NewPlanner(st, nil).Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0}})
	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeHybrid, resp.SearchType)
	assert.InDelta(t, 0.5, resp.Results[0].Score, 1e-6)
}

func TestSearch_LexicalReordersCandidates(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx,
		[][]float32{{0.8, 0.6}, {0.7, 0.71}},
		[]models.Metadata{{Text: "unrelated"}, {Text: "solar panels"}})
	require.NoError(t, err)

	resp, err := NewPlanner(st, nil).Search(ctx, &models.SearchRequest{
		QueryVector: []float32{1, 0},
		QueryText:   "solar panels",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"vec_1", "vec_0"}, ids(resp.Results))
}

func TestSearch_FewerThanTopK(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx, [][]float32{{1, 0}, {0, 1}, {1, 1}}, []models.Metadata{{}, {}, {}})
	require.NoError(t, err)

	resp, err := NewPlanner(st, nil).Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0}, TopK: intPtr(10)})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
}

func TestSearch_EmptyStore(t *testing.T) {
	st := newStore(t, 2)
	p := NewPlanner(st, nil)

	for _, hybrid := range []bool{true, false} {
		resp, err := p.Search(context.Background(), &models.SearchRequest{QueryVector: []float32{1, 0}, Hybrid: boolPtr(hybrid)})
		require.NoError(t, err)
		assert.NotNil(t, resp.Results)
		assert.Empty(t, resp.Results)
		if hybrid {
			assert.Equal(t, models.SearchTypeHybrid, resp.SearchType)
		} else {
			assert.Equal(t, models.SearchTypeVector, resp.SearchType)
		}
	}
}

func TestSearch_Errors(t *testing.T) {
	st := newStore(t, 2)
	p := NewPlanner(st, nil)
	ctx := context.Background()

	_, err := p.Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0, 0}})
	var dm *errs.DimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, -1, dm.Position)

	_, err = p.Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0}, TopK: intPtr(0)})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = p.Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0}, TopK: intPtr(-3)})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestSearch_TiesKeepIndexOrder(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx, [][]float32{{1, 0}, {1, 0}, {1, 0}}, []models.Metadata{{}, {}, {}})
	require.NoError(t, err)

	resp, err := NewPlanner(st, nil).Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0}, TopK: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"vec_0", "vec_1", "vec_2"}, ids(resp.Results))
}

func TestSearch_OverfetchPreservesTenantRecall(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()

	// Five foreign vectors outrank the single u1 vector.
	vecs := [][]float32{{1, 0}, {1, 0}, {1, 0}, {1, 0}, {1, 0}, {0.5, 0.5}}
	md := []models.Metadata{{Tenant: "u2"}, {Tenant: "u2"}, {Tenant: "u2"}, {Tenant: "u2"}, {Tenant: "u2"}, {Tenant: "u1"}}
	_, err := st.Add(ctx, vecs, md)
	require.NoError(t, err)

	req := &models.SearchRequest{QueryVector: []float32{1, 0}, TopK: intPtr(1), TenantID: "u1"}

	narrow := NewPlanner(st, &config.SearchConfig{OverfetchFactor: 1})
	resp, err := narrow.Search(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 1, resp.Candidates)

	wide := NewPlanner(st, &config.SearchConfig{OverfetchFactor: 10})
	resp, err = wide.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"vec_5"}, ids(resp.Results))
	assert.Equal(t, 6, resp.Candidates)
}

func TestSearch_UserIDAlias(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx, [][]float32{{1, 0}, {1, 0}}, []models.Metadata{{Tenant: "a"}, {Tenant: "b"}})
	require.NoError(t, err)

	resp, err := NewPlanner(st, nil).Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0}, UserID: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vec_1"}, ids(resp.Results))
}

func TestSearch_ConfiguredWeights(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx, [][]float32{{0.5, 0}}, []models.Metadata{{Text: "alpha"}})
	require.NoError(t, err)

	p := NewPlanner(st, &config.SearchConfig{VectorWeight: 0.5, LexicalWeight: 0.5})
	resp, err := p.Search(ctx, &models.SearchRequest{QueryVector: []float32{1, 0}, QueryText: "alpha"})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, resp.Results[0].Score, 1e-6)
}

func TestSearchText(t *testing.T) {
	const dims = 32
	st := newStore(t, dims)
	gw := embedding.NewMockGateway(dims)
	ctx := context.Background()

	texts := []string{"cats are great", "dogs are great"}
	vecs, err := gw.Embed(ctx, texts)
	require.NoError(t, err)
	_, err = st.Add(ctx, vecs, []models.Metadata{{Text: texts[0]}, {Text: texts[1]}})
	require.NoError(t, err)

	p := NewPlanner(st, nil, WithGateway(gw))
	resp, err := p.SearchText(ctx, &models.TextSearchRequest{Query: "cats are great", TopK: intPtr(1)})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "vec_0", resp.Results[0].StableID)
	assert.InDelta(t, 1.0, resp.Results[0].LexicalScore, 1e-9)

	_, err = p.SearchText(ctx, &models.TextSearchRequest{Query: "  "})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = NewPlanner(st, nil).SearchText(ctx, &models.TextSearchRequest{Query: "cats"})
	assert.ErrorIs(t, err, errs.ErrDependencyUnavailable)
}

func TestKeywordSearch(t *testing.T) {
	st := newStore(t, 2)
	ctx := context.Background()
	_, err := st.Add(ctx,
		[][]float32{{1, 0}, {0, 1}, {1, 1}, {0, 0}},
		[]models.Metadata{
			{Tenant: "u1", Text: "cats are great"},
			{Tenant: "u2", Text: "cats are fine"},
			{Text: "cats everywhere"},
			{Tenant: "u1", Text: "dogs only"},
		})
	require.NoError(t, err)

	p := NewPlanner(st, nil)
	resp, err := p.KeywordSearch(ctx, &models.KeywordSearchRequest{Query: "cats", TenantID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.SearchTypeKeyword, resp.SearchType)
	got := ids(resp.Results)
	assert.ElementsMatch(t, []string{"vec_0", "vec_2"}, got)

	resp, err = p.KeywordSearch(ctx, &models.KeywordSearchRequest{Query: "cats", TopK: intPtr(1)})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)

	_, err = p.KeywordSearch(ctx, &models.KeywordSearchRequest{Query: ""})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestStats(t *testing.T) {
	st := newStore(t, 4)
	p := NewPlanner(st, &config.SearchConfig{OverfetchFactor: 3})
	s := p.Stats()
	assert.Equal(t, 3, s.OverfetchFactor)
	assert.Equal(t, 4, s.Dimensions)
	assert.Equal(t, 0, s.TotalVectors)
}

func TestFetchK(t *testing.T) {
	p := &Planner{overfetch: 10}
	assert.Equal(t, 3, p.fetchK(2, 3))
	assert.Equal(t, 10, p.fetchK(1, 100))
	assert.Equal(t, 100, p.fetchK(10, 100))
	assert.Equal(t, 100, p.fetchK(11, 100))
	assert.Equal(t, 50, p.fetchK(math.MaxInt, 50))
}
