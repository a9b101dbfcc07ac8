package extract

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// structuredProduct is a schema.org Product read from a JSON-LD block.
type structuredProduct struct {
	Name     string
	URL      string
	Price    string
	Currency string
	Rating   float64
	Reviews  float64
}

// structuredProducts collects every Product declared in the page's JSON-LD
// blocks. Blocks that fail to parse are skipped.
func structuredProducts(doc *goquery.Document, res resolver) []structuredProduct {
	var out []structuredProduct

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			slog.Debug("skipping malformed ld+json block", "error", err)
			return
		}

		for _, obj := range ldCandidates(data) {
			if !isProductType(obj["@type"]) {
				continue
			}
			name, _ := obj["name"].(string)
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			ref := firstString(obj, "url", "@id")
			p := structuredProduct{
				Name: name,
				URL:  res.resolve(ref),
			}
			p.Price, p.Currency = offerPrice(obj["offers"])
			p.Rating, p.Reviews = aggregateRating(obj["aggregateRating"])
			out = append(out, p)
		}
	})

	return out
}

// ldCandidates flattens a decoded JSON-LD document: an object contributes
// itself plus its @graph members, a list contributes its elements.
func ldCandidates(data any) []map[string]any {
	var out []map[string]any
	switch v := data.(type) {
	case map[string]any:
		out = append(out, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]any); ok {
					out = append(out, m)
				}
			}
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// isProductType accepts "Product" or a type list containing "Product".
func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// offerPrice reads price and currency from an offers object (or the first
// object of an offers list), falling back to its priceSpecification.
func offerPrice(offers any) (price, currency string) {
	offer := firstObject(offers)
	if offer == nil {
		return "", ""
	}
	spec := firstObject(offer["priceSpecification"])

	price = scalarString(offer["price"])
	if price == "" && spec != nil {
		price = scalarString(spec["price"])
	}
	currency = scalarString(offer["priceCurrency"])
	if currency == "" && spec != nil {
		currency = scalarString(spec["priceCurrency"])
	}
	return price, currency
}

// aggregateRating returns the rating value and review count, both 0 when
// absent or unparseable. Negative values are clamped to 0.
func aggregateRating(v any) (rating, reviews float64) {
	agg, ok := v.(map[string]any)
	if !ok {
		return 0, 0
	}
	rating = toFloat(agg["ratingValue"])
	count := agg["reviewCount"]
	if isEmpty(count) {
		count = agg["ratingCount"]
	}
	reviews = toFloat(count)
	return math.Max(rating, 0), math.Max(reviews, 0)
}

// isEmpty reports whether a JSON value is absent, null, "", 0 or false.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}

// structuredScore is the Pass A scoring rule.
func structuredScore(base float64, p structuredProduct) float64 {
	score := base
	if HasKeyword(p.Name) {
		score += keywordBonus
	}
	score += p.Rating
	score += math.Min(maxReviewBonus, p.Reviews/reviewsPerUnit)
	return score
}

func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// scalarString renders a JSON string or number; anything else is "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// toFloat parses a JSON number or numeric string; anything else is 0.
func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	return 0
}
