package features

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText strips HTML markup from s and collapses whitespace. Plain text
// passes through unchanged apart from whitespace.
func CleanText(s string) string {
	if !strings.Contains(s, "<") {
		return cleanWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return cleanWhitespace(s)
	}

	doc.Find("script, style, noscript").Remove()
	// Block boundaries would otherwise glue adjacent words together.
	doc.Find("p, div, li, br, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})

	return cleanWhitespace(doc.Text())
}

func cleanWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
