package brands

import (
	"strings"

	"github.com/Farouk858/product-radar/models"
	"github.com/antzucaro/matchr"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a name to be
// offered as a suggestion.
const suggestThreshold = 0.8

// Index returns the position of the brand named name, compared
// case-insensitively, or -1.
func Index(list []models.BrandConfig, name string) int {
	for i, b := range list {
		if strings.EqualFold(b.Name, name) {
			return i
		}
	}
	return -1
}

// Upsert adds a brand or updates the URL of an existing one. It reports
// whether a new entry was appended. An existing entry keeps its name
// spelling and alts; an empty url leaves it untouched.
func Upsert(list []models.BrandConfig, name, url string) ([]models.BrandConfig, bool) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)

	if i := Index(list, name); i >= 0 {
		if url != "" {
			list[i].URL = url
		}
		return list, false
	}
	return append(list, models.BrandConfig{Name: name, URL: url}), true
}

// Remove deletes the brand named name. It reports whether one was found.
func Remove(list []models.BrandConfig, name string) ([]models.BrandConfig, bool) {
	i := Index(list, strings.TrimSpace(name))
	if i < 0 {
		return list, false
	}
	return append(list[:i], list[i+1:]...), true
}

// Suggest returns the listed brand name most similar to name, if any is
// similar enough to be a likely typo.
func Suggest(list []models.BrandConfig, name string) (string, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	best, bestScore := "", 0.0
	for _, b := range list {
		score := matchr.JaroWinkler(target, strings.ToLower(b.Name), false)
		if score > bestScore {
			best, bestScore = b.Name, score
		}
	}
	if bestScore < suggestThreshold {
		return "", false
	}
	return best, true
}
