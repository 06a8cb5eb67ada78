package models

// SearchResult is a single ranked hit.
type SearchResult struct {
	StableID     string   `json:"vector_db_id"`
	Score        float64  `json:"score"`
	VectorScore  float64  `json:"vector_score"`
	LexicalScore float64  `json:"lexical_score"`
	Metadata     Metadata `json:"metadata"`
}

// SearchResponse is the ordered result list and the search type that produced it.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	SearchType string         `json:"search_type"`
	// Candidates is the number of index hits examined before tenant filtering.
	Candidates int   `json:"candidates"`
	QueryTime  int64 `json:"query_time_ms"`
}

// StoreStats describes the live store.
type StoreStats struct {
	TotalVectors    int    `json:"total_vectors"`
	Dimensions      int    `json:"dimensions"`
	IndexType       string `json:"index_type"`
	OverfetchFactor int    `json:"overfetch_factor"`
	Tenants         int    `json:"tenants"`
}

// EmbedRequest is the embedding gateway request body.
type EmbedRequest struct {
	Texts     []string `json:"texts"`
	Normalize *bool    `json:"normalize,omitempty"`
}

// EmbedResponse is the embedding gateway response body.
type EmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
}

// ModelInfo describes the configured embedding model.
type ModelInfo struct {
	Model        string `json:"model"`
	Dimensions   int    `json:"dimensions"`
	MaxSeqLength int    `json:"max_seq_length"`
}
