package models

import "strings"

// BrandConfig is one tracked retailer. It is static input to a run and is
// never mutated by the extraction or diff code.
type BrandConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`

	// Alts are alternate collection paths visited after the base URL.
	Alts []Alt `json:"alts,omitempty"`
}

// Alt is an alternate collection path appended to the brand URL.
type Alt struct {
	// Path is appended to the brand URL with its trailing slash trimmed,
	// e.g. "/collections/new-arrivals".
	Path string `json:"path"`

	// Hint biases scoring ("new", "best", ...). When empty the path itself
	// is used as the hint.
	Hint string `json:"hint,omitempty"`
}

// EffectiveHint returns the hint used for scoring pages visited via a.
func (a Alt) EffectiveHint() string {
	if a.Hint != "" {
		return a.Hint
	}
	return a.Path
}

// AltURL returns the absolute URL of a: the brand URL with trailing slashes
// trimmed, followed by the alt path.
func (b BrandConfig) AltURL(a Alt) string {
	return strings.TrimRight(b.URL, "/") + a.Path
}
