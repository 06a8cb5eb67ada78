package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

const (
	fieldText     = "text"
	fieldFilename = "filename"
	docType       = "passage"
)

// BleveIndex implements KeywordIndex with an in-memory Bleve index.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates an empty in-memory Bleve index.
// The store holds no state across restarts, so neither does this index.
func NewBleveIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

func newIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a query term matches
	// the exact word the way lexical scoring in the planner does.
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = false
	docMapping.AddFieldMappingsAt(fieldText, textFieldMapping)
	docMapping.AddFieldMappingsAt(fieldFilename, textFieldMapping)
	im.AddDocumentMapping(docType, docMapping)
	im.DefaultType = docType
	im.DefaultMapping = docMapping
	return im
}

// IndexBatch indexes docs in one Bleve batch. Documents without text or filename are skipped.
func (b *BleveIndex) IndexBatch(ctx context.Context, docs []Document) error {
	batch := b.index.NewBatch()
	for _, d := range docs {
		if d.Text == "" && d.Filename == "" {
			continue
		}
		// The standard analyzer does not split on underscores, so "q3_sales_report.pdf"
		// would otherwise only match as a single token.
		d.Filename = strings.ReplaceAll(d.Filename, "_", " ")
		if err := batch.Index(d.ID, d); err != nil {
			return fmt.Errorf("failed to queue %s: %w", d.ID, err)
		}
	}
	if batch.Size() == 0 {
		return nil
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch failed: %w", err)
	}
	return nil
}

// DeleteBatch removes documents by id. Unknown ids are ignored.
func (b *BleveIndex) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve delete failed: %w", err)
	}
	return nil
}

// Search runs a match query over text and filename and returns up to limit results.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]KeywordResult, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return []KeywordResult{}, nil
	}
	req := bleve.NewSearchRequest(buildQuery(query, opts))
	req.Size = limit
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// buildQuery returns a disjunction over the text and filename fields.
// Filename matches are weighted by opts.TitleBoost; fuzzy term queries replace match queries when enabled.
func buildQuery(query string, opts *SearchOptions) blevequery.Query {
	titleBoost := 1.0
	fuzzy := false
	fuzziness := 1
	if opts != nil {
		if opts.TitleBoost > 0 {
			titleBoost = opts.TitleBoost
		}
		fuzzy = opts.FuzzyEnabled
		if opts.Fuzziness > 0 {
			fuzziness = opts.Fuzziness
		}
	}

	textQuery := fieldQuery(query, fieldText, fuzzy, fuzziness, 1.0)
	titleQuery := fieldQuery(query, fieldFilename, fuzzy, fuzziness, titleBoost)
	return bleve.NewDisjunctionQuery(textQuery, titleQuery)
}

func fieldQuery(query, field string, fuzzy bool, fuzziness int, boost float64) blevequery.Query {
	if !fuzzy {
		mq := bleve.NewMatchQuery(query)
		mq.SetField(field)
		mq.SetBoost(boost)
		return mq
	}
	terms := strings.Fields(strings.ToLower(query))
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		fq.SetBoost(boost)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
