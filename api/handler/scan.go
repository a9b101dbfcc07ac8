package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Farouk858/product-radar/brands"
	"github.com/Farouk858/product-radar/cache"
	"github.com/Farouk858/product-radar/models"
	"github.com/Farouk858/product-radar/radar"
	"github.com/gin-gonic/gin"
)

// Scanner scans a single brand.
type Scanner interface {
	ScanBrand(ctx context.Context, b models.BrandConfig) radar.BrandScan
}

// Scan returns a handler for POST /api/v1/scan.
//
// Flow:
//  1. Parse the brand; brands without alts get the built-in ones.
//  2. Serve a cached scan when max_age allows.
//  3. Scan base URL and alts, merge, respond.
//
// Fetch failures do not fail the request; they are reported in notes.
func Scan(sc Scanner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}

		brand, err := brands.WithDefaults(req.Brand())
		if err != nil {
			respondError(c, err)
			return
		}

		maxAge := time.Duration(req.MaxAge) * time.Second
		key := cache.Key(brand)
		if cached, hit := cc.Get(key, maxAge); hit {
			cached.CacheStatus = "hit"
			cached.Brand = brand.Name
			c.JSON(http.StatusOK, cached)
			return
		}

		scan := sc.ScanBrand(c.Request.Context(), brand)
		if err := c.Request.Context().Err(); err != nil {
			respondError(c, models.NewFetchError(models.ErrCodeTimeout, "scan aborted", err))
			return
		}

		resp := models.ScanResponse{
			Success:   true,
			Brand:     scan.Brand,
			Products:  scan.Products,
			Notes:     scan.Notes,
			Engines:   scan.Engines,
			ElapsedMs: scan.Elapsed.Milliseconds(),
		}
		if resp.Products == nil {
			resp.Products = []models.Product{}
		}

		if cc != nil && maxAge > 0 {
			cc.Set(key, resp)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}
