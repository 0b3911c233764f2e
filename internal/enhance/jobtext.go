package enhance

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)</?(p|li|ul|ol|div|span|br|h[1-6]|strong|em|b|i|section|article|table|tr|td|th|body|html)\b[^>]*>`)

var spaceRun = regexp.MustCompile(`[ \t\p{Zs}]+`)

// Elements that start a new line of text.
var blockTags = map[string]bool{
	"p": true, "li": true, "ul": true, "ol": true, "div": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "main": true, "aside": true,
	"table": true, "tr": true, "td": true, "th": true, "dt": true, "dd": true,
	"blockquote": true, "pre": true,
}

// JobText turns a job description pasted as HTML (from a job board page) into
// its visible text, one line per block. Every text node is kept exactly once.
// Plain text comes back unchanged.
func JobText(s string) string {
	if !htmlTag.MatchString(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, nav, header, footer, iframe, noscript, template").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var b strings.Builder
	writeText(root, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// writeText walks sel in document order, writing text nodes and breaking
// lines around block elements.
func writeText(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		if name == "#text" {
			b.WriteString(c.Text())
			return
		}
		block := blockTags[name]
		if block {
			b.WriteByte('\n')
		}
		writeText(c, b)
		if block {
			b.WriteByte('\n')
		}
	})
}
