package htmltext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tagStart matches the opening of a real HTML construct (element,
// closing tag, comment or doctype). A bare "<" in prose, as in
// "a < b", never starts one, so such text skips the HTML path instead
// of losing everything after the "<" to the parser.
var tagStart = regexp.MustCompile(`<[a-zA-Z/!]`)

// Flatten reduces a snippet that may contain HTML markup to plain text
// with collapsed whitespace. Non-HTML input passes through with the
// same whitespace normalization.
func Flatten(raw string) string {
	text := raw
	if tagStart.MatchString(raw) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			doc.Find("script, style").Remove()
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts a string to at most limit runes. A limit of zero or
// less leaves the string untouched.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
