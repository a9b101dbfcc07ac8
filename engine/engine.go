package engine

import (
	"context"
	"time"
)

// Engine is the interface that all fetch engines must implement.
type Engine interface {
	// Name returns the engine identifier (e.g. "http", "rod", "rod-stealth").
	Name() string

	// Fetch retrieves the rendered HTML for the given request. Failures are
	// *models.FetchError, possibly wrapped.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a page.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Stealth bool
	Block   BlockPolicy
}

// BlockPolicy lists the subresources a browser engine aborts while loading
// a page. Engines without subresource loading ignore it.
type BlockPolicy struct {
	// ResourceTypes are CDP resource type names, e.g. "Image", "Font".
	ResourceTypes []string

	// Hosts are substrings matched against the lower-cased request URL.
	Hosts []string
}

// FetchResult is the output of a successful engine fetch.
type FetchResult struct {
	HTML       string
	Title      string
	StatusCode int
	FinalURL   string
	EngineName string
}
