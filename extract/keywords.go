package extract

import "strings"

// GenericKeywords are phrases that mark a product or page as notable.
// Order matters only for the diagnostic keyword list.
var GenericKeywords = []string{
	"bestseller", "best seller", "best-selling",
	"back in stock", "restock", "restocked",
	"most popular", "popular",
	"trending",
	"new arrivals", "new in", "just dropped",
}

// Hint families that raise the base score of every candidate on a page.
var (
	bestHints = []string{"best", "popular", "bestseller", "top"}
	newHints  = []string{"new", "latest", "drop", "arrivals", "just-dropped"}
)

// Score weights.
const (
	baseScore      = 1.0
	bestHintBonus  = 3.0
	newHintBonus   = 2.0
	keywordBonus   = 3.0
	maxReviewBonus = 5.0
	reviewsPerUnit = 10.0
)

// BaseScore returns the page-level starting score for a collection hint.
// Both hint families may apply to the same hint.
func BaseScore(hint string) float64 {
	score := baseScore
	if hint == "" {
		return score
	}
	h := strings.ToLower(hint)
	if containsAny(h, bestHints) {
		score += bestHintBonus
	}
	if containsAny(h, newHints) {
		score += newHintBonus
	}
	return score
}

// HasKeyword reports whether text contains any generic keyword,
// case-insensitively.
func HasKeyword(text string) bool {
	return containsAny(strings.ToLower(text), GenericKeywords)
}

// MatchedKeywords returns the generic keywords present in text, in
// GenericKeywords order.
func MatchedKeywords(text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, kw := range GenericKeywords {
		if strings.Contains(lower, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}

func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
