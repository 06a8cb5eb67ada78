package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel renders each sheet under a "[Sheet name]" header with tab-separated cells.
func extractExcel(content []byte) (string, map[string]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", nil, malformed(FormatXLSX, err)
	}
	defer f.Close()

	var buf strings.Builder
	sheets := f.GetSheetList()
	rowCount := 0
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", nil, malformed(FormatXLSX, err)
		}
		if len(rows) == 0 {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("[Sheet " + sheet + "]\n")
		for _, row := range rows {
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
		}
		rowCount += len(rows)
	}
	return strings.TrimSpace(buf.String()), map[string]any{"sheets": len(sheets), "rows": rowCount}, nil
}
