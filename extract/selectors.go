package extract

import (
	"strings"

	"github.com/Farouk858/product-radar/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// fallbackSelectors are tried in order; each yields matches in document
// order. They catch product tiles on sites without structured data.
var fallbackSelectors = []cascadia.Selector{
	// Product links.
	cascadia.MustCompile(`a[href*='/products/'], a[href*='product']`),
	// Links inside product tiles.
	cascadia.MustCompile(`[class*='product'] a`),
	// Titles.
	cascadia.MustCompile(`h2, h3, .product-title, .ProductItem__Title, .card__heading`),
	// Image links.
	cascadia.MustCompile(`a:has(img)`),
}

// navLabels are link texts that are site navigation, never products.
var navLabels = map[string]struct{}{
	"home":   {},
	"shop":   {},
	"cart":   {},
	"menu":   {},
	"search": {},
}

// fallbackProducts is Pass B: selector-based candidates, each scored by the
// keywords in its surrounding text.
func fallbackProducts(doc *goquery.Document, res resolver, base float64) []models.Product {
	var out []models.Product

	for _, sel := range fallbackSelectors {
		doc.FindMatcher(sel).Each(func(_ int, el *goquery.Selection) {
			name := Normalize(el.Text())
			if !validNameLength(name) {
				return
			}
			if _, nav := navLabels[strings.ToLower(name)]; nav {
				return
			}

			link := res.resolveLink(hrefFor(el))
			if link == "" {
				return
			}

			score := base
			if HasKeyword(localText(el)) {
				score += keywordBonus
			}

			out = append(out, models.Product{
				Name:   name,
				URL:    link,
				Score:  score,
				Status: Classify(name),
			})
		})
	}

	return out
}

// hrefFor returns the element's own href when it is a link, else the href
// of its nearest ancestor link.
func hrefFor(el *goquery.Selection) string {
	if goquery.NodeName(el) == "a" {
		if href, ok := el.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return href
		}
	}
	parent := el.ParentsFiltered("a").First()
	if parent.Length() == 0 {
		return ""
	}
	href, _ := parent.Attr("href")
	return href
}

// localText is the element's text plus that of its two nearest ancestors.
func localText(el *goquery.Selection) string {
	parent := el.Parent()
	grand := parent.Parent()
	return strings.Join([]string{
		spacedText(el),
		spacedText(parent),
		spacedText(grand),
	}, " ")
}
