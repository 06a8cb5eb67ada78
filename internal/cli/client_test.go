package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/extract"
	"github.com/hyperjump/kensaku/internal/ingest"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/server"
	"github.com/hyperjump/kensaku/internal/store"
)

const clientTestDims = 16

func newClient(t *testing.T) *Client {
	t.Helper()
	st, err := store.New("memory", clientTestDims)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	gw := embedding.NewMockGateway(clientTestDims)
	pipeline, err := ingest.NewPipeline(extract.NewExtractor(), gw, st, nil)
	require.NoError(t, err)
	planner := search.NewPlanner(st, nil, search.WithGateway(gw))
	srv := server.New(planner, st, nil, nil, server.WithGateway(gw), server.WithPipeline(pipeline))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", 5*time.Second)
}

func TestClient_IngestSearchStats(t *testing.T) {
	c := newClient(t)
	ctx := t.Context()

	ing, err := c.Ingest(ctx, "/tmp/docs/minutes.txt", []byte("The board approved the harbor expansion budget."), "port-authority")
	require.NoError(t, err)
	assert.Equal(t, "minutes.txt", ing.Filename)
	assert.Equal(t, 1, ing.PassagesCount)

	resp, err := c.SearchText(ctx, &models.TextSearchRequest{Query: "harbor budget", TenantID: "port-authority"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, ing.IDs[0], resp.Results[0].StableID)

	resp, err = c.SearchKeyword(ctx, &models.KeywordSearchRequest{Query: "harbor", TenantID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
	assert.Equal(t, clientTestDims, stats.Dimensions)
}

func TestClient_ServerErrorDecoded(t *testing.T) {
	c := newClient(t)

	_, err := c.SearchText(t.Context(), &models.TextSearchRequest{Query: "   "})
	require.Error(t, err)
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.Status)
	assert.Equal(t, "ValidationError", serr.Kind)
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, time.Second).Stats(t.Context())
	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadGateway, serr.Status)
	assert.Empty(t, serr.Kind)
	assert.Equal(t, "gateway down", serr.Details)
}
