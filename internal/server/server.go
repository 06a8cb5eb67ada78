// Package server exposes the store, planner, embedding gateway, and ingest pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/ingest"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/store"
)

// ServiceName is reported by /health.
const ServiceName = "kensaku"

// Server is the HTTP server for the kensaku API.
type Server struct {
	planner  *search.Planner
	store    *store.Store
	gateway  embedding.Gateway
	pipeline *ingest.Pipeline
	config   *config.ServerConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *serverMetrics
	stopRL   func()
	handler  http.Handler
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithGateway enables /embed and /search/text.
func WithGateway(g embedding.Gateway) Option {
	return func(s *Server) { s.gateway = g }
}

// WithPipeline enables /extract and /ingest.
func WithPipeline(p *ingest.Pipeline) Option {
	return func(s *Server) { s.pipeline = p }
}

// WithRegistry registers metrics in reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// New creates a server and builds its routes. A nil cfg uses the defaults.
func New(planner *search.Planner, st *store.Store, cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	if cfg == nil {
		cfg = &config.ServerConfig{
			Host:                  config.DefaultHost,
			Port:                  config.DefaultPort,
			RequestTimeoutSeconds: config.DefaultRequestTimeoutSeconds,
			MaxUploadMB:           config.DefaultMaxUploadMB,
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		planner: planner,
		store:   st,
		config:  cfg,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newServerMetrics(s.registry, st)
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		if s.config.RateLimit > 0 {
			rl, stop := newRateLimiter(s.config.RateLimit, s.config.RateBurst, s.logger)
			s.stopRL = stop
			r.Use(rl.middleware)
		}
		if s.config.RequestTimeoutSeconds > 0 {
			r.Use(middleware.Timeout(time.Duration(s.config.RequestTimeoutSeconds) * time.Second))
		}
		r.Use(middleware.Compress(5))

		r.Post("/index/add", s.handleAdd)
		r.Post("/search/hybrid", s.handleSearch)
		r.Post("/search/text", s.handleTextSearch)
		r.Post("/search/keyword", s.handleKeywordSearch)
		r.Get("/vectors/{id}", s.handleGetVector)
		r.Get("/stats", s.handleStats)
		r.Post("/embed", s.handleEmbed)
		r.Get("/model-info", s.handleModelInfo)
		r.Post("/extract", s.handleExtract)
		r.Post("/ingest", s.handleIngest)
	})
	return r
}

// Handler returns the router, for tests and embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and blocks until the server stops.
// It returns nil after a graceful Stop.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.stopRL != nil {
		s.stopRL()
		s.stopRL = nil
	}
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
