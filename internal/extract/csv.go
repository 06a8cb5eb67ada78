package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// extractCSV renders a summary header, the column names, and one tab-separated line per row.
// The first record is taken as the header.
func extractCSV(content []byte) (string, map[string]any, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return "", nil, malformed(FormatCSV, err)
	}
	if len(records) == 0 {
		return "", map[string]any{"rows": 0, "columns": []string{}}, nil
	}

	header, rows := records[0], records[1:]
	var b strings.Builder
	fmt.Fprintf(&b, "CSV Data (%d rows, %d columns)\n", len(rows), len(header))
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(header, ", "))
	b.WriteString(strings.Join(header, "\t"))
	for _, row := range rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, "\t"))
	}
	return b.String(), map[string]any{"rows": len(rows), "columns": header}, nil
}
