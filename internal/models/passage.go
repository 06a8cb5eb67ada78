package models

// Passage is an offset-stable slice of a document's extracted text.
// CharStart and CharEnd are half-open rune offsets into the extracted text.
type Passage struct {
	PassageID int            `json:"passage_id"`
	Text      string         `json:"text"`
	Page      *int           `json:"page"`
	CharStart int            `json:"char_start"`
	CharEnd   int            `json:"char_end"`
	Metadata  PassageDetails `json:"metadata"`
}

// PassageDetails is the per-passage metadata bag.
type PassageDetails struct {
	Length int    `json:"length"`
	Format string `json:"format"`
}

// ExtractionResponse is the result of extracting and chunking one document.
type ExtractionResponse struct {
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	TotalChars  int            `json:"total_chars"`
	Format      string         `json:"format"`
	Info        map[string]any `json:"info,omitempty"`
	Passages    []Passage      `json:"passages"`
}

// IngestResponse is returned after a document's passages have been embedded and added.
type IngestResponse struct {
	DocumentID    string   `json:"document_id"`
	Filename      string   `json:"filename"`
	PassagesCount int      `json:"passages_count"`
	TotalVectors  int      `json:"total_vectors"`
	IDs           []string `json:"ids"`
}
