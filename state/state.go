// Package state persists the last known product list of every brand and
// computes which products are new since the previous run.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Farouk858/product-radar/catalog"
	"github.com/Farouk858/product-radar/models"
)

// ErrCorrupt is returned when a snapshot cannot be upgraded.
var ErrCorrupt = errors.New("state: corrupt snapshot")

// Record is one persisted product.
type Record struct {
	Name   string        `json:"name"`
	URL    string        `json:"url"`
	Score  float64       `json:"score"`
	Status models.Status `json:"status"`
}

// Key returns the identity key of r.
func (r Record) Key() catalog.Key {
	return catalog.NewKey(r.Name, r.URL)
}

// Snapshot maps a brand name to its last known product list.
type Snapshot map[string][]Record

// Brands returns the brand names in s, sorted.
func (s Snapshot) Brands() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Replace overwrites the stored list for brand with products.
func (s Snapshot) Replace(brand string, products []models.Product) {
	s[brand] = Records(products)
}

// Records converts products into their persisted form.
func Records(products []models.Product) []Record {
	out := make([]Record, 0, len(products))
	for _, p := range products {
		status := p.Status
		if status == "" {
			status = models.StatusUnknown
		}
		out = append(out, Record{
			Name:   p.Name,
			URL:    p.URL,
			Score:  p.Score,
			Status: status,
		})
	}
	return out
}

// Load reads the snapshot at path. A missing file yields an empty snapshot.
func Load(path string) (Snapshot, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	snap, err := Upgrade(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Upgrade decodes a snapshot document, accepting both the legacy form (a
// list of product names per brand) and the record form. Missing record
// fields are defaulted. Upgrading an already upgraded document is a no-op.
func Upgrade(raw []byte) (Snapshot, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Snapshot{}, nil
	}

	var doc map[string][]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	snap := make(Snapshot, len(doc))
	for brand, elems := range doc {
		records := make([]Record, 0, len(elems))
		for i, elem := range elems {
			rec, err := upgradeElement(elem)
			if err != nil {
				return nil, fmt.Errorf("%w: brand %q element %d: %v", ErrCorrupt, brand, i, err)
			}
			records = append(records, rec)
		}
		snap[brand] = records
	}
	return snap, nil
}

// storedRecord mirrors Record with a loosely typed score.
type storedRecord struct {
	Name   string          `json:"name"`
	URL    string          `json:"url"`
	Score  json.RawMessage `json:"score"`
	Status string          `json:"status"`
}

func upgradeElement(elem json.RawMessage) (Record, error) {
	trimmed := bytes.TrimSpace(elem)
	if len(trimmed) == 0 {
		return Record{}, errors.New("empty element")
	}

	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return Record{}, err
		}
		return Record{Name: name, Status: models.StatusUnknown}, nil
	case '{':
		var sr storedRecord
		if err := json.Unmarshal(trimmed, &sr); err != nil {
			return Record{}, err
		}
		score, err := coerceScore(sr.Score)
		if err != nil {
			return Record{}, err
		}
		status := models.Status(sr.Status)
		if status == "" {
			status = models.StatusUnknown
		}
		return Record{Name: sr.Name, URL: sr.URL, Score: score, Status: status}, nil
	default:
		return Record{}, fmt.Errorf("unexpected value %s", trimmed)
	}
}

// coerceScore accepts a JSON number, a numeric string, null, or nothing.
func coerceScore(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return 0, nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return 0, err
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("score %q is not numeric", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("score %s is not numeric", trimmed)
	}
}

// Save writes snap to path as indented JSON. The file is replaced
// atomically; a failed write leaves the previous snapshot intact.
func Save(path string, snap Snapshot) error {
	if snap == nil {
		snap = Snapshot{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
