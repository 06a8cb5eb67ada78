package extract

import (
	"html"
	"regexp"
	"strings"
)

// odfContentPath is the main content member of OpenDocument packages.
const odfContentPath = "content.xml"

var (
	// odfBlock matches paragraphs and headings; spans inside them are flattened by odfTags.
	odfBlock = regexp.MustCompile(`(?s)<text:(p|h)(?:\s[^>]*[^/>])?>(.*?)</text:(?:p|h)>`)
	odfTags  = regexp.MustCompile(`<[^>]+>`)
)

func extractODP(content []byte) (string, error) {
	return extractODF(FormatODP, content)
}

func extractODS(content []byte) (string, error) {
	return extractODF(FormatODS, content)
}

// extractODF puts each paragraph, heading, or cell paragraph of content.xml on its own line.
func extractODF(format string, content []byte) (string, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", malformed(format, err)
	}
	data, err := readPart(zr, odfContentPath)
	if err != nil {
		return "", malformed(format, err)
	}
	if data == nil {
		return "", errsMissingPart(format, odfContentPath)
	}
	var lines []string
	for _, m := range odfBlock.FindAllStringSubmatch(string(data), -1) {
		t := strings.TrimSpace(html.UnescapeString(odfTags.ReplaceAllString(m[2], "")))
		if t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n"), nil
}
