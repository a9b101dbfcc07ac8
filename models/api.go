package models

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// HTML is the rendered page. Required.
	HTML string `json:"html" binding:"required"`

	// URL resolves relative links. Required.
	URL string `json:"url" binding:"required,url"`

	// Hint is the collection hint of the page, e.g. "new-arrivals".
	Hint string `json:"hint,omitempty"`

	// PageCap overrides the per-page candidate cap. Max: 200.
	PageCap int `json:"page_cap,omitempty" binding:"omitempty,min=1,max=200"`
}

// ExtractResponse is the response for POST /api/v1/extract.
type ExtractResponse struct {
	Success    bool         `json:"success"`
	Candidates []Product    `json:"candidates"`
	Keywords   []string     `json:"keywords,omitempty"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// ScanRequest is the payload for POST /api/v1/scan. It describes a brand
// the same way the brand list does.
type ScanRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url" binding:"required,url"`
	Alts []Alt  `json:"alts,omitempty"`

	// MaxAge serves a cached scan of the same brand younger than this many
	// seconds. 0 disables the cache lookup.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Brand converts r into a BrandConfig.
func (r *ScanRequest) Brand() BrandConfig {
	return BrandConfig{Name: r.Name, URL: r.URL, Alts: r.Alts}
}

// ScanResponse is the response for POST /api/v1/scan.
type ScanResponse struct {
	Success  bool      `json:"success"`
	Brand    string    `json:"brand,omitempty"`
	Products []Product `json:"products"`
	Notes    []string  `json:"notes,omitempty"`
	Engines  []string  `json:"engines,omitempty"`

	// CacheStatus is "hit" or "miss"; empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	ElapsedMs int64        `json:"elapsed_ms"`
	Error     *ErrorDetail `json:"error,omitempty"`
}

// SnapshotResponse is the response for the snapshot endpoints.
type SnapshotResponse struct {
	Success bool `json:"success"`

	// Brands maps brand name to its stored products.
	Brands map[string][]Product `json:"brands,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string     `json:"status"` // "healthy" or "degraded"
	Uptime    string     `json:"uptime"`
	Engine    string     `json:"engine"`
	PoolStats *PoolStats `json:"pool_stats,omitempty"`
	Version   string     `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
