// Package cli provides output formatting and an HTTP client for the kensaku command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kensaku/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one result per line.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseOutputFormat maps a flag value to a SearchOutputFormat.
func ParseOutputFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(s); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for i, r := range response.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\n", i+1, r.Score, r.StableID, TruncateWords(oneLine(r.Metadata.Text), 12))
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d %s results in %dms (%d candidates examined)\n\n",
		len(response.Results), response.SearchType, response.QueryTime, response.Candidates)
	for i, result := range response.Results {
		writeOneResult(w, i+1, result)
	}
}

func writeOneResult(w io.Writer, rank int, result models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f (Vector: %.4f, Lexical: %.4f)\n",
		rank, result.Score, result.VectorScore, result.LexicalScore)
	fmt.Fprintf(w, "ID: %s\n", result.StableID)
	if result.Metadata.HasTenant() {
		fmt.Fprintf(w, "Tenant: %s\n", result.Metadata.Tenant)
	}
	if name, ok := result.Metadata.Extra["filename"].(string); ok && name != "" {
		fmt.Fprintf(w, "File: %s\n", name)
	}
	if result.Metadata.Text != "" {
		fmt.Fprintf(w, "\n%s\n", Truncate(result.Metadata.Text, 200))
	}
	fmt.Fprintln(w)
}

// WriteStats writes store statistics as aligned key/value lines or JSON.
func WriteStats(w io.Writer, stats *models.StoreStats, format SearchOutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Fprintf(w, "total_vectors:      %d\n", stats.TotalVectors)
	fmt.Fprintf(w, "dimensions:         %d\n", stats.Dimensions)
	fmt.Fprintf(w, "index_type:         %s\n", stats.IndexType)
	fmt.Fprintf(w, "overfetch_factor:   %d\n", stats.OverfetchFactor)
	fmt.Fprintf(w, "tenants:            %d\n", stats.Tenants)
	return nil
}

// WriteIngestResult writes a one-line summary of an ingested file.
func WriteIngestResult(w io.Writer, path string, resp *models.IngestResponse) {
	fmt.Fprintf(w, "%s: document %s, %d passages (store now holds %d vectors)\n",
		path, resp.DocumentID, resp.PassagesCount, resp.TotalVectors)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate truncates s to maxLen bytes and appends "..." if truncated.
// The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
