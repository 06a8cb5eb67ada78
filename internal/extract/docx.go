package extract

import (
	"html"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

var (
	// wParagraph matches a non-empty <w:p> element; self-closing paragraphs are skipped.
	wParagraph = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*[^/>])?>(.*?)</w:p>`)
	// wtTag matches <w:t>text</w:t> with any attributes.
	wtTag = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)

	// PartName and ContentType may appear in either order.
	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// docxMainPart reads the main document path from [Content_Types].xml,
// falling back to word/document.xml.
func docxMainPart(types []byte) string {
	s := string(types)
	for _, re := range []*regexp.Regexp{partNameRe, partNameRe2} {
		if m := re.FindStringSubmatch(s); len(m) > 1 {
			return strings.TrimPrefix(m[1], "/")
		}
	}
	return docxDocumentXMLPath
}

// extractDOCX joins non-blank paragraphs with blank lines. Runs inside a paragraph are
// concatenated as written.
func extractDOCX(content []byte) (string, map[string]any, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", nil, malformed(FormatDOCX, err)
	}
	types, err := readPart(zr, contentTypesPath)
	if err != nil {
		return "", nil, malformed(FormatDOCX, err)
	}
	docPath := docxMainPart(types)
	docXML, err := readPart(zr, docPath)
	if err != nil {
		return "", nil, malformed(FormatDOCX, err)
	}
	if docXML == nil {
		return "", nil, errsMissingPart(FormatDOCX, docPath)
	}

	paragraphs := paragraphTexts(string(docXML), wParagraph, wtTag)
	return strings.Join(paragraphs, "\n\n"), map[string]any{"paragraph_count": len(paragraphs)}, nil
}

// paragraphTexts returns the trimmed, non-blank text of each paragraph match.
// Markup with runs but no paragraph wrapper is treated as one paragraph.
func paragraphTexts(xml string, para, run *regexp.Regexp) []string {
	blocks := para.FindAllStringSubmatch(xml, -1)
	if len(blocks) == 0 {
		blocks = [][]string{{xml, xml}}
	}
	var out []string
	for _, b := range blocks {
		var sb strings.Builder
		for _, r := range run.FindAllStringSubmatch(b[1], -1) {
			sb.WriteString(html.UnescapeString(r[1]))
		}
		if t := strings.TrimSpace(sb.String()); t != "" {
			out = append(out, t)
		}
	}
	return out
}
