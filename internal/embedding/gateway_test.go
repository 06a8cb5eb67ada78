package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/vector"
)

func TestValidateBatch(t *testing.T) {
	assert.ErrorIs(t, ValidateBatch(nil), errs.ErrInvalidArgument)
	assert.NoError(t, ValidateBatch(make([]string, MaxBatchSize)))
	assert.ErrorIs(t, ValidateBatch(make([]string, MaxBatchSize+1)), errs.ErrInvalidArgument)
}

func TestMockGateway_Deterministic(t *testing.T) {
	g := NewMockGateway(16)
	ctx := context.Background()

	a, err := g.Embed(ctx, []string{"hello", "world", "hello"})
	require.NoError(t, err)
	require.Len(t, a, 3)
	assert.Len(t, a[0], 16)
	assert.Equal(t, a[0], a[2])
	assert.NotEqual(t, a[0], a[1])
	assert.InDelta(t, 1.0, vector.L2Norm(a[0]), 1e-5)

	one, err := EmbedOne(ctx, g, "hello")
	require.NoError(t, err)
	assert.Equal(t, a[0], one)
}

func embedServer(t *testing.T, dims int, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req models.EmbedRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.NotNil(t, req.Normalize)
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"ValidationError","details":"boom"}`))
			return
		}
		resp := models.EmbedResponse{Model: "remote-model", Dimensions: dims}
		for range req.Texts {
			resp.Embeddings = append(resp.Embeddings, make([]float32, dims))
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestHTTPGateway_Embed(t *testing.T) {
	srv := embedServer(t, 4, http.StatusOK)
	defer srv.Close()

	g := NewHTTPGateway(HTTPConfig{Endpoint: srv.URL + "/", Model: "m", Dimensions: 4, Normalize: true})
	out, err := g.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Len(t, out[1], 4)
}

func TestHTTPGateway_DimensionMismatch(t *testing.T) {
	srv := embedServer(t, 3, http.StatusOK)
	defer srv.Close()

	g := NewHTTPGateway(HTTPConfig{Endpoint: srv.URL, Dimensions: 4})
	_, err := g.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, errs.ErrDependencyUnavailable)
}

func TestHTTPGateway_ServerError(t *testing.T) {
	srv := embedServer(t, 4, http.StatusBadRequest)
	defer srv.Close()

	g := NewHTTPGateway(HTTPConfig{Endpoint: srv.URL, Dimensions: 4})
	_, err := g.Embed(context.Background(), []string{"a"})
	require.ErrorIs(t, err, errs.ErrDependencyUnavailable)
	assert.True(t, strings.Contains(err.Error(), "boom"), err.Error())
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	srv := embedServer(t, 4, http.StatusOK)
	url := srv.URL
	srv.Close()

	g := NewHTTPGateway(HTTPConfig{Endpoint: url, Dimensions: 4})
	_, err := g.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, errs.ErrDependencyUnavailable)
}

func TestNew_Providers(t *testing.T) {
	g, err := New(&config.EmbeddingConfig{Provider: "mock"}, 8, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, g.Dimensions())
	_, cached := g.(*Cached)
	assert.False(t, cached)

	g, err = New(&config.EmbeddingConfig{Provider: "mock", CacheSize: 10}, 8, nil)
	require.NoError(t, err)
	_, cached = g.(*Cached)
	assert.True(t, cached)

	g, err = New(&config.EmbeddingConfig{Provider: "http", Endpoint: "http://localhost:1", MaxTokens: 128}, 8, nil)
	require.NoError(t, err)
	assert.IsType(t, &HTTPGateway{}, g)
	assert.Equal(t, 128, g.MaxSeqLength())

	_, err = New(&config.EmbeddingConfig{Provider: "bogus"}, 8, nil)
	assert.ErrorIs(t, err, errs.ErrDependencyUnavailable)
}

func BenchmarkMockGateway_Embed(b *testing.B) {
	g := NewMockGateway(384)
	ctx := context.Background()
	texts := []string{"benchmark query text for embedding"}
	for b.Loop() {
		_, _ = g.Embed(ctx, texts)
	}
}
