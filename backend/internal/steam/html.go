package steam

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	brTags    = regexp.MustCompile(`(?i)<br\s*/?>`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
	spaceRuns = regexp.MustCompile(`[ \t]+`)
)

// htmlToText converts store-page description HTML into plain text.
// Images are removed entirely; links and emphasis collapse to their
// inner text; block boundaries become newlines.
func htmlToText(html string) (string, error) {
	// Line breaks carry meaning in store descriptions, preserve them
	// before the parser flattens everything.
	html = brTags.ReplaceAllString(html, "\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("img").Remove()
	doc.Find("p, div, h1, h2, h3, h4, h5, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	text := doc.Text()
	text = spaceRuns.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text), nil
}
