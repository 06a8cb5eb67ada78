package watcher

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/fileid"
	"github.com/hyperjump/kensaku/internal/ingest"
	"github.com/hyperjump/kensaku/internal/models"
)

// Ingester adds one document to the store.
type Ingester interface {
	Ingest(ctx context.Context, doc ingest.Document, tenant string) (*models.IngestResponse, error)
}

// FileIngester ingests files from disk under a fixed tenant, once per distinct content.
type FileIngester struct {
	ingester Ingester
	tenant   string
	maxBytes int64
	seen     *fileid.Set
	logger   *zap.Logger
}

// NewFileIngester returns a FileIngester. Files larger than maxBytes are rejected;
// maxBytes <= 0 disables the limit.
func NewFileIngester(ing Ingester, tenant string, maxBytes int64, logger *zap.Logger) *FileIngester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileIngester{
		ingester: ing,
		tenant:   tenant,
		maxBytes: maxBytes,
		seen:     fileid.NewSet(),
		logger:   logger,
	}
}

// IngestFile reads path and ingests it. It returns a nil response and skipped=true when
// identical content was already ingested by this FileIngester. A failed ingest does not
// mark the content as seen.
func (f *FileIngester) IngestFile(ctx context.Context, path string) (resp *models.IngestResponse, skipped bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, errs.InvalidArgument("%s is not a regular file", path)
	}
	if f.maxBytes > 0 && info.Size() > f.maxBytes {
		return nil, false, errs.InvalidArgument("%s is %d bytes, limit is %d", path, info.Size(), f.maxBytes)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	id := fileid.ContentID(content)
	if !f.seen.Claim(id) {
		return nil, true, nil
	}
	doc := ingest.Document{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     content,
	}
	resp, err = f.ingester.Ingest(ctx, doc, f.tenant)
	if err != nil {
		f.seen.Release(id)
		return nil, false, err
	}
	return resp, false, nil
}

// Handle is a Handler that logs the outcome of IngestFile.
func (f *FileIngester) Handle(ctx context.Context, path string) {
	resp, skipped, err := f.IngestFile(ctx, path)
	switch {
	case err != nil:
		f.logger.Warn("ingest failed", zap.String("path", path), zap.String("kind", errs.Kind(err)), zap.Error(err))
	case skipped:
		f.logger.Debug("content already ingested", zap.String("path", path))
	default:
		f.logger.Info("file ingested",
			zap.String("path", path),
			zap.String("document_id", resp.DocumentID),
			zap.Int("passages", resp.PassagesCount))
	}
}
