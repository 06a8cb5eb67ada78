package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/models"
)

// HTTPGateway calls a remote embedding service's POST /embed endpoint.
// It is safe for concurrent use.
type HTTPGateway struct {
	endpoint   string
	model      string
	dimensions int
	maxSeqLen  int
	normalize  bool
	client     *http.Client
	logger     *zap.Logger
}

// HTTPConfig holds the settings for constructing an HTTPGateway.
type HTTPConfig struct {
	// Endpoint is the service base URL (e.g. "http://localhost:8001").
	Endpoint string
	// Model is reported when the service does not name its model.
	Model      string
	Dimensions int
	// MaxSeqLength is the service model's token limit, reported by /model-info.
	MaxSeqLength int
	Normalize    bool
	Timeout      time.Duration
}

// HTTPOption configures an HTTPGateway.
type HTTPOption func(*HTTPGateway)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(g *HTTPGateway) { g.client = c }
}

// WithHTTPLogger sets a logger for request failures.
func WithHTTPLogger(l *zap.Logger) HTTPOption {
	return func(g *HTTPGateway) { g.logger = l }
}

// NewHTTPGateway constructs an HTTPGateway from cfg.
func NewHTTPGateway(cfg HTTPConfig, opts ...HTTPOption) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	g := &HTTPGateway{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		maxSeqLen:  cfg.MaxSeqLength,
		normalize:  cfg.Normalize,
		client:     &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Embed sends texts to the service and checks that one vector of the configured
// dimension comes back per text.
func (g *HTTPGateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	normalize := g.normalize
	payload, err := json.Marshal(models.EmbedRequest{Texts: texts, Normalize: &normalize})
	if err != nil {
		return nil, errs.Internal("embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Internal("embedding request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("embedding service unreachable", zap.String("endpoint", g.endpoint), zap.Error(err))
		return nil, errs.Unavailable("embedding service", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, errs.Unavailable("embedding service", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && (eb.Details != "" || eb.Error != "") {
			msg = strings.TrimSpace(msg + " " + eb.Error + " " + eb.Details)
		}
		return nil, errs.Unavailable("embedding service", fmt.Errorf("%s", msg))
	}

	var result models.EmbedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errs.Unavailable("embedding service", fmt.Errorf("decode response: %w", err))
	}
	if len(result.Embeddings) != len(texts) {
		return nil, errs.Unavailable("embedding service",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings)))
	}
	for i, e := range result.Embeddings {
		if len(e) != g.dimensions {
			return nil, errs.Unavailable("embedding service",
				fmt.Errorf("embedding %d has %d dimensions, expected %d", i, len(e), g.dimensions))
		}
	}
	return result.Embeddings, nil
}

// Dimensions returns the expected embedding dimension.
func (g *HTTPGateway) Dimensions() int {
	return g.dimensions
}

// Model returns the configured model name.
func (g *HTTPGateway) Model() string {
	return g.model
}

// MaxSeqLength returns the configured token limit of the service model.
func (g *HTTPGateway) MaxSeqLength() int {
	return g.maxSeqLen
}

// Close releases idle connections.
func (g *HTTPGateway) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
