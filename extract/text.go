package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Bounds on accepted product name length, in runes.
const (
	minNameLen = 3
	maxNameLen = 120
)

// Normalize collapses runs of whitespace into single spaces and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func validNameLength(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= minNameLen && n <= maxNameLen
}

// spacedText returns the text content of every node in sel, with a single
// space between adjacent text nodes so that words in sibling elements do
// not run together.
func spacedText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(&b, n, false)
	}
	return b.String()
}

// collectText walks n depth-first appending text nodes. When visibleOnly is
// set, script/style/noscript/template subtrees are skipped.
func collectText(b *strings.Builder, n *html.Node, visibleOnly bool) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t)
		}
		return
	case html.ElementNode:
		if visibleOnly {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, visibleOnly)
	}
}

// visibleText extracts the text rendered inside <body>, skipping
// script/style/noscript content, whitespace-normalised. Used for page-level
// keyword signals only.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	for _, n := range doc.Find("body").Nodes {
		collectText(&b, n, true)
	}
	return Normalize(b.String())
}

// resolver resolves references against a page URL.
type resolver struct {
	base *url.URL
}

func newResolver(pageURL string) resolver {
	u, err := url.Parse(pageURL)
	if err != nil {
		return resolver{}
	}
	return resolver{base: u}
}

// resolve returns ref as an absolute URL. An empty ref stays empty; an
// unparseable base leaves ref untouched.
func (r resolver) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if r.base == nil {
		return ref
	}
	u, err := r.base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// resolveLink is resolve restricted to http(s) targets; javascript:, mailto:
// and similar links resolve to "".
func (r resolver) resolveLink(ref string) string {
	abs := r.resolve(ref)
	if abs == "" {
		return ""
	}
	u, err := url.Parse(abs)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return abs
}
