package ingest

import (
	"strings"

	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/extract"
	"github.com/hyperjump/kensaku/internal/models"
)

// Chunker splits text into overlapping character windows.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker returns a chunker whose windows are size characters long and start
// size-overlap characters apart. Overlap must be in [0, size).
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, errs.InvalidArgument("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, errs.InvalidArgument("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk slides the window across text until its start reaches the end. Each window is
// trimmed and whitespace-only windows are dropped without consuming a passage id.
// Offsets count characters (runes) and describe the untrimmed window. When info carries
// a page count, each passage gets the page its window starts on, assuming text is spread
// evenly across pages.
func (c *Chunker) Chunk(text string, info extract.Info) []models.Passage {
	runes := []rune(text)
	n := len(runes)
	passages := []models.Passage{}
	step := c.size - c.overlap
	for start := 0; start < n; start += step {
		end := min(start+c.size, n)
		window := strings.TrimSpace(string(runes[start:end]))
		if window == "" {
			continue
		}
		p := models.Passage{
			PassageID: len(passages),
			Text:      window,
			CharStart: start,
			CharEnd:   end,
			Metadata: models.PassageDetails{
				Length: len([]rune(window)),
				Format: info.Format,
			},
		}
		if info.TotalPages > 0 {
			page := int(float64(start)/float64(n)*float64(info.TotalPages)) + 1
			p.Page = &page
		}
		passages = append(passages, p)
	}
	return passages
}
