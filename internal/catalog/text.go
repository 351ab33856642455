package catalog

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// CleanText folds raw markup text fragments into a single normalized
// string: each fragment has its whitespace collapsed, empty fragments are
// dropped, the remainder is joined with single spaces, NFKC-normalized,
// and finally HTML-entity decoded. `["A&amp;B "]` becomes `"A&B"`.
//
// The order matters: entities are decoded last so normalization never
// manufactures characters that look like entity syntax.
func CleanText(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		collapsed := strings.Join(strings.Fields(fragment), " ")
		if collapsed == "" {
			continue
		}
		parts = append(parts, collapsed)
	}

	joined := strings.Join(parts, " ")
	return html.UnescapeString(norm.NFKC.String(joined))
}

// DirectText extracts the cleaned text of an element's direct text nodes,
// ignoring text in nested elements. The catalog interleaves the values we
// want as bare text with decorated child elements we do not.
func DirectText(s *goquery.Selection) string {
	fragments := make([]string, 0, 2)
	for _, node := range s.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xhtml.TextNode {
				fragments = append(fragments, child.Data)
			}
		}
	}
	return CleanText(fragments)
}
