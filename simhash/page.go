package simhash

import (
	"strings"

	"golang.org/x/net/html"
)

// MirrorThreshold is the largest distance at which two pages still count
// as the same page.
const MirrorThreshold = 3

// Page holds the fingerprints of one fetched document.
type Page struct {
	// Structure covers the sequence of element names.
	Structure uint64

	// Content covers the visible words, in order.
	Content uint64
}

// Of fingerprints an HTML document in a single tokenizer pass. Text inside
// script, style, noscript and template elements is ignored.
func Of(htmlStr string) Page {
	tags, words := tokens(htmlStr)
	return Page{
		Structure: Fingerprint(shingles(tags, 3)),
		Content:   Fingerprint(shingles(words, 2)),
	}
}

// Empty reports whether nothing was fingerprinted.
func (p Page) Empty() bool {
	return p.Structure == 0 && p.Content == 0
}

// Mirrors reports whether p and q are near-identical in both structure and
// visible text. Empty pages mirror nothing.
func (p Page) Mirrors(q Page) bool {
	if p.Empty() || q.Empty() {
		return false
	}
	return Similar(p.Structure, q.Structure, MirrorThreshold) &&
		Similar(p.Content, q.Content, MirrorThreshold)
}

func tokens(htmlStr string) (tags, words []string) {
	z := html.NewTokenizer(strings.NewReader(htmlStr))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return tags, words
		case html.StartTagToken:
			name, _ := z.TagName()
			tag := string(name)
			tags = append(tags, tag)
			if hiddenText(tag) {
				skip++
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			tags = append(tags, string(name))
		case html.EndTagToken:
			name, _ := z.TagName()
			if hiddenText(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				words = append(words, strings.Fields(strings.ToLower(string(z.Text())))...)
			}
		}
	}
}

func hiddenText(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template":
		return true
	}
	return false
}
