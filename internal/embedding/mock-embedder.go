package embedding

import (
	"context"
	"math"

	"github.com/hyperjump/kensaku/internal/vector"
)

const mockMaxSeqLength = 256

// MockGateway is a deterministic gateway for tests and offline use. It returns a
// fixed-dimension vector derived from the text hash so that the same text always
// gets the same embedding.
type MockGateway struct {
	dimensions int
	normalize  bool
}

// NewMockGateway returns a gateway that produces deterministic, L2-normalized embeddings.
func NewMockGateway(dimensions int) *MockGateway {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockGateway{dimensions: dimensions, normalize: true}
}

// Embed returns one deterministic embedding per text.
func (g *MockGateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = g.embed(text)
	}
	return out, nil
}

func (g *MockGateway) embed(text string) []float32 {
	h := HashString(text)
	emb := make([]float32, g.dimensions)
	for i := 0; i < g.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	if g.normalize {
		vector.Normalize(emb)
	}
	return emb
}

// Dimensions returns the embedding dimension.
func (g *MockGateway) Dimensions() int {
	return g.dimensions
}

// Model returns the mock model name.
func (g *MockGateway) Model() string {
	return "mock"
}

// MaxSeqLength reports the same limit as the default tokenizer frame.
func (g *MockGateway) MaxSeqLength() int {
	return mockMaxSeqLength
}

// Close is a no-op for MockGateway.
func (g *MockGateway) Close() error {
	return nil
}
