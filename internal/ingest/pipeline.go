// Package ingest turns uploaded documents into stored passages: extract text, chunk it,
// embed the chunks, and add them to the store in one batch.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/extract"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/store"
)

// Metadata keys written for every ingested passage, next to user_id and text.
const (
	KeyDocumentID = "document_id"
	KeyFilename   = "filename"
	KeyPassageID  = "passage_id"
	KeyPage       = "page"
	KeyCharStart  = "char_start"
	KeyCharEnd    = "char_end"
	KeyFormat     = "format"
)

// Document is one uploaded file.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Pipeline orchestrates the extract → chunk → embed → add flow.
type Pipeline struct {
	extractor   *extract.Extractor
	chunker     *Chunker
	gateway     embedding.Gateway
	store       *store.Store
	batchSize   int
	concurrency int
	logger      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a logger for ingest events.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline wires the pipeline. The gateway must produce vectors of the store's dimension.
// A nil cfg uses the defaults.
func NewPipeline(ext *extract.Extractor, gw embedding.Gateway, st *store.Store, cfg *config.IngestConfig, opts ...Option) (*Pipeline, error) {
	if ext == nil || gw == nil || st == nil {
		return nil, fmt.Errorf("ingest: extractor, gateway, and store are required")
	}
	if gw.Dimensions() != st.Dimensions() {
		return nil, fmt.Errorf("ingest: embedding model %q produces %d dimensions, store expects %d",
			gw.Model(), gw.Dimensions(), st.Dimensions())
	}
	c := config.IngestConfig{ChunkSize: config.DefaultChunkSize, ChunkOverlap: config.DefaultChunkOverlap}
	if cfg != nil {
		c = *cfg
	}
	chunker, err := NewChunker(c.ChunkSize, c.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	p := &Pipeline{
		extractor:   ext,
		chunker:     chunker,
		gateway:     gw,
		store:       st,
		batchSize:   c.EmbedBatchSize,
		concurrency: c.EmbedConcurrency,
		logger:      zap.NewNop(),
	}
	if p.batchSize <= 0 || p.batchSize > embedding.MaxBatchSize {
		p.batchSize = embedding.MaxBatchSize
	}
	if p.concurrency <= 0 {
		p.concurrency = config.DefaultEmbedConcurrency
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Extract extracts and chunks doc without embedding or storing anything.
func (p *Pipeline) Extract(ctx context.Context, doc Document) (*models.ExtractionResponse, error) {
	text, info, passages, err := p.split(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &models.ExtractionResponse{
		Filename:    doc.Filename,
		ContentType: contentTypeOrUnknown(doc.ContentType),
		TotalChars:  len([]rune(text)),
		Format:      info.Format,
		Info:        info.Map(),
		Passages:    passages,
	}, nil
}

// Ingest extracts, chunks, and embeds doc, then adds every passage to the store in a
// single batch tagged with tenant. Nothing is stored unless every step succeeds.
func (p *Pipeline) Ingest(ctx context.Context, doc Document, tenant string) (*models.IngestResponse, error) {
	start := time.Now()
	_, info, passages, err := p.split(ctx, doc)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(passages))
	for i, ps := range passages {
		texts[i] = ps.Text
	}
	vectors, err := p.embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	documentID := uuid.New().String()
	metadata := make([]models.Metadata, len(passages))
	for i, ps := range passages {
		extra := map[string]any{
			KeyDocumentID: documentID,
			KeyFilename:   doc.Filename,
			KeyPassageID:  ps.PassageID,
			KeyCharStart:  ps.CharStart,
			KeyCharEnd:    ps.CharEnd,
			KeyFormat:     info.Format,
		}
		if ps.Page != nil {
			extra[KeyPage] = *ps.Page
		}
		metadata[i] = models.Metadata{Tenant: tenant, Text: ps.Text, Extra: extra}
	}

	added, err := p.store.Add(ctx, vectors, metadata)
	if err != nil {
		return nil, err
	}
	p.logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.String("filename", doc.Filename),
		zap.String("format", info.Format),
		zap.Int("passages", len(passages)),
		zap.Duration("took", time.Since(start)))
	return &models.IngestResponse{
		DocumentID:    documentID,
		Filename:      doc.Filename,
		PassagesCount: len(passages),
		TotalVectors:  added.TotalVectors,
		IDs:           added.IDs,
	}, nil
}

func (p *Pipeline) split(ctx context.Context, doc Document) (string, extract.Info, []models.Passage, error) {
	if len(doc.Content) == 0 {
		return "", extract.Info{}, nil, errs.InvalidArgument("file %q is empty", doc.Filename)
	}
	text, info, err := p.extractor.Extract(ctx, doc.Content, doc.Filename, doc.ContentType)
	if err != nil {
		return "", extract.Info{}, nil, err
	}
	return text, info, p.chunker.Chunk(text, info), nil
}

// embed runs batches of at most batchSize texts with bounded concurrency and returns
// vectors in input order. The first failure cancels the remaining batches.
func (p *Pipeline) embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for lo := 0; lo < len(texts); lo += p.batchSize {
		hi := min(lo+p.batchSize, len(texts))
		g.Go(func() error {
			vecs, err := p.gateway.Embed(gctx, texts[lo:hi])
			if err != nil {
				return err
			}
			if len(vecs) != hi-lo {
				return errs.Unavailable("embedding gateway", fmt.Errorf("expected %d embeddings, got %d", hi-lo, len(vecs)))
			}
			copy(out[lo:hi], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func contentTypeOrUnknown(ct string) string {
	if ct == "" {
		return "unknown"
	}
	return ct
}
