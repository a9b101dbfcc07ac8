package state

import (
	"strings"

	"github.com/Farouk858/product-radar/catalog"
	"github.com/Farouk858/product-radar/models"
)

// DiffNew returns the products in current whose identity is absent from
// previous, in current order. Any previous record without a URL, whether
// upgraded from a bare legacy name or stored from a URL-less structured
// product, matches every current product of the same name.
func DiffNew(previous []Record, current []models.Product) []models.Product {
	if len(previous) == 0 {
		return current
	}

	keys := make(map[catalog.Key]struct{}, len(previous))
	names := make(map[string]struct{})
	for _, r := range previous {
		keys[r.Key()] = struct{}{}
		if r.URL == "" {
			names[strings.ToLower(r.Name)] = struct{}{}
		}
	}

	var fresh []models.Product
	for _, p := range current {
		if _, ok := keys[catalog.KeyOf(p)]; ok {
			continue
		}
		if _, ok := names[strings.ToLower(p.Name)]; ok {
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh
}

// ChooseBest returns the first product with the highest score.
func ChooseBest(items []models.Product) (models.Product, bool) {
	if len(items) == 0 {
		return models.Product{}, false
	}
	best := items[0]
	for _, p := range items[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, true
}
