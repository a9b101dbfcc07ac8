// Package brands reads and edits the list of tracked retailers.
//
// The list is a JSON5 array of {name, url, alts?} objects. Alts may be
// written either as bare paths or as {path, hint} objects. Brands that
// declare no alts pick up the built-in paths of well-known brands.
package brands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/Farouk858/product-radar/models"
	"github.com/titanous/json5"
)

// ErrNotFound is returned when the brand list file does not exist.
var ErrNotFound = errors.New("brands: brand list not found")

// builtinAlts are collection paths that tend to surface bestsellers and
// new arrivals for brands the radar has tracked from the start.
var builtinAlts = map[string][]models.Alt{
	"Corteiz": nil,
	"Represent": {
		{Path: "/collections/new-arrivals"},
		{Path: "/collections/bestsellers"},
	},
	"Supreme": {
		{Path: "/shop/new"},
		{Path: "/shop/all"},
	},
	"Palace": {
		{Path: "/collections/new"},
		{Path: "/collections/all"},
	},
	"Aimé Leon Dore": {
		{Path: "/collections/new-arrivals"},
		{Path: "/collections/menswear"},
	},
	"Jaded London": {
		{Path: "/collections/new-in"},
		{Path: "/collections/bestsellers"},
	},
}

// DefaultAlts returns a copy of the built-in alternate paths for brand,
// matched case-insensitively. Unknown brands have none.
func DefaultAlts(brand string) []models.Alt {
	for name, alts := range builtinAlts {
		if strings.EqualFold(name, brand) {
			return slices.Clone(alts)
		}
	}
	return nil
}

type fileEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Alts []any  `json:"alts"`
}

// Read returns every entry of the brand list at path as written, without
// validation or defaults.
func Read(path string) ([]models.BrandConfig, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read brand list: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var entries []fileEntry
	if err := json5.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse brand list %s: %w", path, err)
	}

	out := make([]models.BrandConfig, 0, len(entries))
	for _, e := range entries {
		out = append(out, models.BrandConfig{
			Name: strings.TrimSpace(e.Name),
			URL:  strings.TrimSpace(e.URL),
			Alts: parseAlts(e.Name, e.Alts),
		})
	}
	return out, nil
}

func parseAlts(brand string, raw []any) []models.Alt {
	var alts []models.Alt
	for _, v := range raw {
		switch t := v.(type) {
		case string:
			if p := strings.TrimSpace(t); p != "" {
				alts = append(alts, models.Alt{Path: p})
			}
		case map[string]any:
			path, _ := t["path"].(string)
			hint, _ := t["hint"].(string)
			if strings.TrimSpace(path) == "" {
				slog.Warn("ignoring alt without path", "brand", brand)
				continue
			}
			alts = append(alts, models.Alt{Path: strings.TrimSpace(path), Hint: strings.TrimSpace(hint)})
		default:
			slog.Warn("ignoring malformed alt", "brand", brand, "value", v)
		}
	}
	return alts
}

// Load reads the brand list at path for a run. Entries missing a name or
// URL are skipped, and brands without alts receive DefaultAlts.
func Load(path string) ([]models.BrandConfig, error) {
	entries, err := Read(path)
	if err != nil {
		return nil, err
	}

	out := make([]models.BrandConfig, 0, len(entries))
	for _, b := range entries {
		if b.Name == "" || b.URL == "" {
			continue
		}
		filled, err := WithDefaults(b)
		if err != nil {
			return nil, err
		}
		out = append(out, filled)
	}
	return out, nil
}

// WithDefaults fills empty fields of b from the built-in brand table.
func WithDefaults(b models.BrandConfig) (models.BrandConfig, error) {
	def := models.BrandConfig{Alts: DefaultAlts(b.Name)}
	if err := mergo.Merge(&b, def); err != nil {
		return b, fmt.Errorf("apply defaults for %s: %w", b.Name, err)
	}
	return b, nil
}

// Save writes list to path sorted by name, case-insensitively.
func Save(path string, list []models.BrandConfig) error {
	sorted := slices.Clone(list)
	Sort(sorted)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sorted); err != nil {
		return fmt.Errorf("encode brand list: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write brand list: %w", err)
	}
	return nil
}

// Sort orders list by name, case-insensitively. The sort is stable.
func Sort(list []models.BrandConfig) {
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
	})
}
