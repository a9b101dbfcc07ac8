// Package extract turns the rendered HTML of a commerce page into scored
// product candidates.
//
// Two passes run on every page. Pass A reads schema.org Product entries
// from JSON-LD; Pass B matches common product-tile selectors. Both feed one
// catalog.Set, so a product found twice keeps its best score.
package extract

import (
	"strings"

	"github.com/Farouk858/product-radar/catalog"
	"github.com/Farouk858/product-radar/models"
	"github.com/PuerkitoBio/goquery"
)

// DefaultPageCap bounds the candidates returned for one page.
const DefaultPageCap = 40

// Options tunes a single extraction.
type Options struct {
	// PageCap limits returned candidates; <= 0 uses DefaultPageCap.
	PageCap int
}

// Result is the outcome of extracting one page.
type Result struct {
	// Candidates are deduplicated, in first-encounter order.
	Candidates []models.Product `json:"candidates"`

	// Keywords are the generic keywords found in the page's visible text.
	// Diagnostic only.
	Keywords []string `json:"keywords,omitempty"`
}

// Page extracts product candidates from rawHTML. pageURL resolves relative
// links; hint is the collection hint of the visited path ("" for the base
// URL). Page never fails: unparseable input yields an empty Result.
func Page(rawHTML, pageURL, hint string, opts Options) Result {
	limit := opts.PageCap
	if limit <= 0 {
		limit = DefaultPageCap
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Result{}
	}

	res := newResolver(pageURL)
	base := BaseScore(hint)
	set := catalog.NewSet(catalog.MaxScore)

	// Pass A: structured data.
	for _, sp := range structuredProducts(doc, res) {
		name := Normalize(sp.Name)
		if !validNameLength(name) {
			continue
		}
		sp.Name = name
		set.Add(models.Product{
			Name:     name,
			URL:      sp.URL,
			Score:    structuredScore(base, sp),
			Status:   Classify(name),
			Price:    sp.Price,
			Currency: sp.Currency,
		})
	}

	// Pass B: selector fallback.
	set.AddAll(fallbackProducts(doc, res, base))

	return Result{
		Candidates: set.Items(limit),
		Keywords:   MatchedKeywords(visibleText(doc)),
	}
}
