package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlToText reduces an HTML fragment to its visible text, one block per
// line. Invalid markup falls back to the raw input rather than dropping
// content.
func htmlToText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var parts []string
	doc.Find("script,style").Remove()
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}
