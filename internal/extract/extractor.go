// Package extract turns uploaded documents into plain text for chunking.
package extract

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/errs"
)

// NoTextPlaceholder replaces extracted text that is empty or whitespace only.
const NoTextPlaceholder = "[No text found]"

// Format names reported in Info.Format and passage metadata.
const (
	FormatPDF   = "pdf"
	FormatDOCX  = "docx"
	FormatPPTX  = "pptx"
	FormatXLSX  = "xlsx"
	FormatODP   = "odp"
	FormatODS   = "ods"
	FormatCSV   = "csv"
	FormatText  = "txt"
	FormatAudio = "audio"
	FormatImage = "image"
)

// Info describes an extracted document.
type Info struct {
	Format string
	// TotalPages is the page count for paginated formats, zero otherwise.
	TotalPages  int
	TotalSlides int
	Extra       map[string]any
}

// Map flattens Info for JSON responses.
func (i Info) Map() map[string]any {
	m := make(map[string]any, len(i.Extra)+3)
	for k, v := range i.Extra {
		m[k] = v
	}
	m["format"] = i.Format
	if i.TotalPages > 0 {
		m["total_pages"] = i.TotalPages
	}
	if i.TotalSlides > 0 {
		m["total_slides"] = i.TotalSlides
	}
	return m
}

var extFormats = map[string]string{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".pptx": FormatPPTX,
	".xlsx": FormatXLSX,
	".odp":  FormatODP,
	".ods":  FormatODS,
	".csv":  FormatCSV,
	".txt":  FormatText,
	".md":   FormatText,
	".rst":  FormatText,
	".mp3":  FormatAudio,
	".wav":  FormatAudio,
	".m4a":  FormatAudio,
	".ogg":  FormatAudio,
	".png":  FormatImage,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".webp": FormatImage,
}

var mediaFormats = map[string]string{
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   FormatDOCX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": FormatPPTX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         FormatXLSX,
	"application/vnd.oasis.opendocument.presentation":                           FormatODP,
	"application/vnd.oasis.opendocument.spreadsheet":                            FormatODS,
	"text/csv":      FormatCSV,
	"text/plain":    FormatText,
	"text/markdown": FormatText,
}

// DetectFormat picks a format from the filename extension, falling back to the content type.
// It returns "" when neither is recognised.
func DetectFormat(filename, contentType string) string {
	if f, ok := extFormats[strings.ToLower(filepath.Ext(filename))]; ok {
		return f
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if f, ok := mediaFormats[mt]; ok {
		return f
	}
	switch {
	case strings.HasPrefix(mt, "audio/"):
		return FormatAudio
	case strings.HasPrefix(mt, "image/"):
		return FormatImage
	}
	return ""
}

// Extractor extracts plain text from document bytes.
type Extractor struct {
	transcriber Transcriber
	logger      *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTranscriber enables audio extraction.
func WithTranscriber(t Transcriber) Option {
	return func(e *Extractor) { e.transcriber = t }
}

// WithLogger sets the extractor logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the text of content, choosing a reader by filename extension or content type.
// Unrecognised formats and images fail with errs.ErrUnsupportedFormat; documents that cannot
// be parsed fail with errs.ErrInvalidArgument. Text that comes back empty is replaced by
// NoTextPlaceholder.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename, contentType string) (string, Info, error) {
	format := DetectFormat(filename, contentType)
	var (
		text string
		info = Info{Format: format}
		err  error
	)
	switch format {
	case FormatPDF:
		text, info.TotalPages, err = extractPDF(content)
	case FormatDOCX:
		text, info.Extra, err = extractDOCX(content)
	case FormatPPTX:
		text, info.TotalSlides, err = extractPPTX(content)
	case FormatXLSX:
		text, info.Extra, err = extractExcel(content)
	case FormatODP:
		text, err = extractODP(content)
	case FormatODS:
		text, err = extractODS(content)
	case FormatCSV:
		text, info.Extra, err = extractCSV(content)
	case FormatText:
		text = extractPlain(content)
	case FormatAudio:
		text, info.Extra, err = e.extractAudio(ctx, content, filename)
	case FormatImage:
		return "", Info{}, fmt.Errorf("%w: image OCR is not available (%s)", errs.ErrUnsupportedFormat, filename)
	default:
		return "", Info{}, fmt.Errorf("%w: %q (%s)", errs.ErrUnsupportedFormat, filename, contentType)
	}
	if err != nil {
		e.logger.Warn("extraction failed", zap.String("filename", filename), zap.String("format", format), zap.Error(err))
		return "", Info{}, err
	}
	if strings.TrimSpace(text) == "" {
		text = NoTextPlaceholder
	}
	return text, info, nil
}

// malformed marks a parse failure as a validation error.
func malformed(format string, err error) error {
	return errs.InvalidArgument("read %s: %v", format, err)
}

func errsMissingPart(format, part string) error {
	return errs.InvalidArgument("read %s: %s not found", format, part)
}
