// Package catalog deduplicates product candidates by their case-insensitive
// (name, url) identity, keeping the highest-scoring observation.
package catalog

import (
	"strings"

	"github.com/Farouk858/product-radar/models"
)

// DefaultBrandCap bounds the merged list for one brand scan.
const DefaultBrandCap = 30

// Key is the identity of a product. Two candidates with equal keys are the
// same product.
type Key struct {
	Name string
	URL  string
}

// KeyOf returns the identity key of p.
func KeyOf(p models.Product) Key {
	return NewKey(p.Name, p.URL)
}

// NewKey lower-cases name and url into a Key.
func NewKey(name, url string) Key {
	return Key{Name: strings.ToLower(name), URL: strings.ToLower(url)}
}

// MergeFunc decides which of two observations with the same key survives.
// It receives the stored value and the incoming one.
type MergeFunc func(existing, incoming models.Product) models.Product

// MaxScore keeps the incoming observation only when it scores strictly
// higher, so ties keep the earliest value. Price and currency missing on the
// winner are carried over from the loser.
func MaxScore(existing, incoming models.Product) models.Product {
	winner, loser := existing, incoming
	if incoming.Score > existing.Score {
		winner, loser = incoming, existing
	}
	if winner.Price == "" && winner.Currency == "" {
		winner.Price = loser.Price
		winner.Currency = loser.Currency
	}
	return winner
}

// Set is an insertion-ordered map of products keyed by identity.
// The zero value is not usable; call NewSet.
type Set struct {
	index map[Key]int
	items []models.Product
	merge MergeFunc
}

// NewSet returns an empty Set that resolves key collisions with merge.
// A nil merge defaults to MaxScore.
func NewSet(merge MergeFunc) *Set {
	if merge == nil {
		merge = MaxScore
	}
	return &Set{
		index: make(map[Key]int),
		merge: merge,
	}
}

// Add inserts p, or merges it into the product already stored under the
// same key. The position of the first encounter is kept.
func (s *Set) Add(p models.Product) {
	k := KeyOf(p)
	if i, ok := s.index[k]; ok {
		s.items[i] = s.merge(s.items[i], p)
		return
	}
	s.index[k] = len(s.items)
	s.items = append(s.items, p)
}

// AddAll adds every product in ps in order.
func (s *Set) AddAll(ps []models.Product) {
	for _, p := range ps {
		s.Add(p)
	}
}

// Has reports whether a product with key k has been added.
func (s *Set) Has(k Key) bool {
	_, ok := s.index[k]
	return ok
}

// Len returns the number of distinct products.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns the products in first-encounter order, truncated to limit
// when limit > 0. The returned slice is a copy.
func (s *Set) Items(limit int) []models.Product {
	n := len(s.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Product, n)
	copy(out, s.items[:n])
	return out
}

// Merge folds the per-page candidate lists of one brand into a single
// deduplicated list in first-encounter order, capped at limit (<= 0 means
// unbounded).
func Merge(limit int, pages ...[]models.Product) []models.Product {
	s := NewSet(MaxScore)
	for _, page := range pages {
		s.AddAll(page)
	}
	return s.Items(limit)
}
