package embedding

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/errs"
)

// Provider names accepted by New.
const (
	ProviderHTTP = "http"
	ProviderONNX = "onnx"
	ProviderMock = "mock"
)

// New builds the gateway selected by cfg.Provider. dimensions is the store dimension;
// every gateway is checked against it. A positive cfg.CacheSize wraps the result in Cached.
func New(cfg *config.EmbeddingConfig, dimensions int, logger *zap.Logger) (Gateway, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		g   Gateway
		err error
	)
	switch cfg.Provider {
	case ProviderHTTP, "":
		g = NewHTTPGateway(HTTPConfig{
			Endpoint:     cfg.Endpoint,
			Model:        cfg.Model,
			Dimensions:   dimensions,
			MaxSeqLength: cfg.MaxTokens,
			Normalize:    cfg.NormalizeOrDefault(),
			Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		}, WithHTTPLogger(logger))
	case ProviderONNX:
		g, err = NewONNXGateway(cfg.ModelPath, dimensions, cfg.MaxTokens, cfg.NormalizeOrDefault(), loadTokenizer(cfg.ModelPath, logger))
		if err != nil {
			return nil, err
		}
	case ProviderMock:
		g = NewMockGateway(dimensions)
	default:
		return nil, errs.Unavailable("embedding gateway", fmt.Errorf("unknown provider %q (supported: http, onnx, mock)", cfg.Provider))
	}

	logger.Info("embedding gateway ready",
		zap.String("provider", cfg.Provider),
		zap.String("model", g.Model()),
		zap.Int("dimensions", g.Dimensions()))

	if cfg.CacheSize > 0 {
		return NewCached(g, cfg.CacheSize), nil
	}
	return g, nil
}

// loadTokenizer looks for vocab.txt next to the model and falls back to SimpleTokenizer.
func loadTokenizer(modelPath string, logger *zap.Logger) Tokenizer {
	vocab := filepath.Join(filepath.Dir(modelPath), "vocab.txt")
	if _, err := os.Stat(vocab); err != nil {
		logger.Warn("vocab.txt not found next to model; using hash tokenizer", zap.String("model", modelPath))
		return &SimpleTokenizer{}
	}
	tok, err := LoadWordPieceTokenizer(vocab)
	if err != nil {
		logger.Warn("failed to load vocab; using hash tokenizer", zap.Error(err))
		return &SimpleTokenizer{}
	}
	return tok
}
