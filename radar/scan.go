package radar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Farouk858/product-radar/catalog"
	"github.com/Farouk858/product-radar/engine"
	"github.com/Farouk858/product-radar/extract"
	"github.com/Farouk858/product-radar/models"
	"github.com/Farouk858/product-radar/simhash"
)

// BrandScan is the merged result of visiting one brand's pages.
type BrandScan struct {
	Brand    string           `json:"brand"`
	Products []models.Product `json:"products"`
	Notes    []string         `json:"notes,omitempty"`

	// Engines lists the engine that served each successfully fetched page.
	Engines []string      `json:"engines,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// visit is the outcome of one page fetch and extraction.
type visit struct {
	result  extract.Result
	page    simhash.Page
	engine  string
	failure string
}

// ScanBrand fetches the base URL and then every alternate path of b in
// order, extracting candidates from each page and merging them. Fetch
// failures never fail the scan; they surface as notes.
func (r *Radar) ScanBrand(ctx context.Context, b models.BrandConfig) BrandScan {
	start := time.Now()
	scan := BrandScan{Brand: b.Name}
	slog.Info("scanning brand", "brand", b.Name, "url", b.URL)

	base := r.visit(ctx, b.URL, "")
	pages := [][]models.Product{base.result.Candidates}
	if base.failure != "" {
		scan.Notes = append(scan.Notes, base.failure+" at base")
	} else {
		scan.Engines = append(scan.Engines, base.engine)
		if hits := base.result.Keywords; len(hits) > 0 {
			scan.Notes = append(scan.Notes, "Page signals: "+signals(hits))
		}
	}

	for _, alt := range b.Alts {
		if ctx.Err() != nil {
			break
		}
		v := r.visit(ctx, b.AltURL(alt), alt.EffectiveHint())
		if v.failure != "" {
			scan.Notes = append(scan.Notes, alt.Path+" "+v.failure)
			continue
		}
		scan.Engines = append(scan.Engines, v.engine)
		if hits := v.result.Keywords; len(hits) > 0 {
			scan.Notes = append(scan.Notes, fmt.Sprintf("%s signals: %s", alt.Path, signals(hits)))
		}
		if base.failure == "" && v.page.Mirrors(base.page) {
			scan.Notes = append(scan.Notes, alt.Path+" mirrors base page")
		}
		pages = append(pages, v.result.Candidates)
	}

	scan.Products = catalog.Merge(r.cfg.Limits.BrandCap, pages...)
	scan.Elapsed = time.Since(start)

	slog.Info("brand scanned",
		"brand", b.Name,
		"products", len(scan.Products),
		"notes", len(scan.Notes),
		"elapsed_ms", scan.Elapsed.Milliseconds(),
	)
	return scan
}

// visit fetches url with retries and extracts it. A failed fetch yields an
// empty result and a failure note such as "timeout on attempt 2".
func (r *Radar) visit(ctx context.Context, url, hint string) visit {
	res, attempt, err := engine.Retry(ctx, r.engine, r.fetchRequest(url), r.retryPolicy())
	if err != nil {
		fe := engine.Categorize(err, models.ErrCodeTransport, "fetch failed")
		slog.Warn("page fetch failed", "url", url, "attempt", attempt, "code", fe.Code, "error", err)
		return visit{failure: fe.Note(attempt)}
	}

	pageURL := res.FinalURL
	if pageURL == "" {
		pageURL = url
	}
	result := extract.Page(res.HTML, pageURL, hint, r.extractOptions())
	slog.Debug("page extracted",
		"url", url,
		"engine", res.EngineName,
		"candidates", len(result.Candidates),
		"keywords", strings.Join(result.Keywords, ","),
	)
	return visit{
		result: result,
		page:   simhash.Of(res.HTML),
		engine: res.EngineName,
	}
}

// signals renders keyword hits sorted and de-duplicated.
func signals(hits []string) string {
	seen := make(map[string]struct{}, len(hits))
	uniq := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		uniq = append(uniq, h)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, ", ")
}
