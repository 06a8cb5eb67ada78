package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kensaku/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		SearchType: models.SearchTypeHybrid,
		Candidates: 20,
		QueryTime:  42,
		Results: []models.SearchResult{
			{
				StableID:     "vec_3",
				Score:        0.9,
				VectorScore:  0.85,
				LexicalScore: 1,
				Metadata: models.Metadata{
					Tenant: "u1",
					Text:   "Content here",
					Extra:  map[string]any{"filename": "notes.txt"},
				},
			},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(strings.NewReader(buf.String())).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.QueryTime != 42 || decoded.SearchType != models.SearchTypeHybrid {
		t.Errorf("decoded query_time=%d search_type=%q", decoded.QueryTime, decoded.SearchType)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].StableID != "vec_3" {
		t.Errorf("want one result with id vec_3, got %+v", decoded.Results)
	}
	if decoded.Results[0].Metadata.Tenant != "u1" {
		t.Errorf("tenant = %q, want u1", decoded.Results[0].Metadata.Tenant)
	}
}

func TestWriteSearchResults_JSON_empty(t *testing.T) {
	response := &models.SearchResponse{Results: []models.SearchResult{}, SearchType: models.SearchTypeVector}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Errorf("empty results should encode as [], got:\n%s", buf.String())
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Found 1 hybrid results", "42ms", "20 candidates", "Rank: 1", "ID: vec_3", "Tenant: u1", "File: notes.txt", "Content here"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	response := sampleResponse()
	response.Results[0].Metadata.Text = "line one\nline   two"
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputCompact); err != nil {
		t.Fatalf("WriteSearchResults(compact): %v", err)
	}
	want := "1\t0.9000\tvec_3\tline one line two\n"
	if buf.String() != want {
		t.Errorf("compact = %q, want %q", buf.String(), want)
	}
}

func TestWriteSearchResults_unknownFormatTreatedAsText(t *testing.T) {
	response := &models.SearchResponse{SearchType: models.SearchTypeVector}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, SearchOutputFormat("unknown")); err != nil {
		t.Fatalf("WriteSearchResults(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "Found") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"text", "compact", "json"} {
		if f, err := ParseOutputFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("ParseOutputFormat(yaml) should fail")
	}
}

func TestWriteStats(t *testing.T) {
	stats := &models.StoreStats{TotalVectors: 7, Dimensions: 4, IndexType: "memory", OverfetchFactor: 10, Tenants: 2}
	var buf bytes.Buffer
	if err := WriteStats(&buf, stats, OutputText); err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"total_vectors:      7", "index_type:         memory", "tenants:            2"} {
		if !strings.Contains(buf.String(), sub) {
			t.Errorf("stats output missing %q:\n%s", sub, buf.String())
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 5, ""},
		{"short", "hi", 5, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"maxLen zero", "ab", 0, "ab"},
		{"maxLen negative", "ab", -1, "ab"},
		{"multibyte boundary", "aéb", 2, "a..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWords int
		want     string
	}{
		{"empty", "", 3, ""},
		{"few words", "one two", 3, "one two"},
		{"exact", "one two three", 3, "one two three"},
		{"more", "one two three four", 3, "one two three..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWords(tt.s, tt.maxWords)
			if got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.s, tt.maxWords, got, tt.want)
			}
		})
	}
}
