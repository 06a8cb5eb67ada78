// Package embedding turns text into fixed-length vectors.
//
// A Gateway is either a remote embedding service (HTTPGateway), a local ONNX
// model (ONNXGateway), or a deterministic hash model for tests (MockGateway).
// Cached adds an LRU in front of any of them.
package embedding

import (
	"context"

	"github.com/hyperjump/kensaku/internal/errs"
)

// MaxBatchSize is the largest number of texts a single Embed call accepts.
const MaxBatchSize = 100

// Gateway produces one vector per input text, in input order.
type Gateway interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// Model names the model that produced the vectors.
	Model() string
	// MaxSeqLength is the longest input, in tokens, the model reads before truncating.
	MaxSeqLength() int
	Close() error
}

// ValidateBatch rejects empty and oversized batches.
func ValidateBatch(texts []string) error {
	if len(texts) == 0 {
		return errs.InvalidArgument("texts must not be empty")
	}
	if len(texts) > MaxBatchSize {
		return errs.InvalidArgument("at most %d texts per request, got %d", MaxBatchSize, len(texts))
	}
	return nil
}

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, g Gateway, text string) ([]float32, error) {
	out, err := g.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}
