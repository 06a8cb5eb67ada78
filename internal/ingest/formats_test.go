package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/search"
)

// minimalFile returns a small document of the given extension whose only text is text.
func minimalFile(t *testing.T, ext, text string) []byte {
	t.Helper()
	switch ext {
	case ".docx":
		return zipOf(t, "word/document.xml",
			`<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>`+text+`</w:t></w:r></w:p></w:body></w:document>`)
	case ".pptx":
		return zipOf(t, "ppt/slides/slide1.xml",
			`<p:sld xmlns:p="p" xmlns:a="a"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>`+text+`</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	case ".odp":
		return zipOf(t, "content.xml",
			`<office:document><office:body><draw:page><draw:text-box><text:p>`+text+`</text:p></draw:text-box></draw:page></office:body></office:document>`)
	case ".ods":
		return zipOf(t, "content.xml",
			`<office:document><office:body><table:table><table:table-row><table:table-cell><text:p>`+text+`</text:p></table:table-cell></table:table-row></table:table></office:body></office:document>`)
	case ".xlsx":
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetCellValue("Sheet1", "A1", text))
		var buf bytes.Buffer
		_, err := f.WriteTo(&buf)
		require.NoError(t, err)
		return buf.Bytes()
	case ".csv":
		return []byte("note\n" + text + "\n")
	default:
		return []byte(text)
	}
}

func zipOf(t *testing.T, name, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create(name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestIngest_EverySupportedFormatIsSearchable(t *testing.T) {
	exts := []string{".txt", ".md", ".csv", ".docx", ".xlsx", ".pptx", ".odp", ".ods"}
	p, st := newPipeline(t, embedding.NewMockGateway(testDims), nil)
	planner := search.NewPlanner(st, nil)
	ctx := context.Background()

	for _, ext := range exts {
		word := "marker" + ext[1:]
		_, err := p.Ingest(ctx, Document{Filename: "doc" + ext, Content: minimalFile(t, ext, word+" lives here")}, "")
		require.NoError(t, err, ext)
	}

	for _, ext := range exts {
		t.Run(ext, func(t *testing.T) {
			resp, err := planner.KeywordSearch(ctx, &models.KeywordSearchRequest{Query: "marker" + ext[1:]})
			require.NoError(t, err)
			require.Len(t, resp.Results, 1)
			md := resp.Results[0].Metadata
			assert.Equal(t, "doc"+ext, md.Extra[KeyFilename])
			assert.Contains(t, md.Text, "marker"+ext[1:])
		})
	}
}
