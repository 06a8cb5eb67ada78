package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	pptxSlidePath = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	// aParagraph matches a non-empty DrawingML <a:p> element.
	aParagraph = regexp.MustCompile(`(?s)<a:p(?:\s[^>]*[^/>])?>(.*?)</a:p>`)
	atTag      = regexp.MustCompile(`<a:t(?:\s[^>]*)?>([^<]*)</a:t>`)
)

// extractPPTX renders each slide as a "[Slide n]" header followed by its text lines,
// in slide-number order, and returns the slide count.
func extractPPTX(content []byte) (string, int, error) {
	zr, err := openZip(content)
	if err != nil {
		return "", 0, malformed(FormatPPTX, err)
	}

	type slide struct {
		num  int
		text string
	}
	var slides []slide
	for _, f := range zr.File {
		m := pptxSlidePath.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return "", 0, malformed(FormatPPTX, err)
		}
		slides = append(slides, slide{num: num, text: strings.Join(paragraphTexts(string(data), aParagraph, atTag), "\n")})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	parts := make([]string, len(slides))
	for i, s := range slides {
		parts[i] = fmt.Sprintf("[Slide %d]\n%s", i+1, s.text)
	}
	return strings.Join(parts, "\n\n"), len(slides), nil
}
