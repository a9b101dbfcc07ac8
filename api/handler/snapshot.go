package handler

import (
	"net/http"
	"strings"

	"github.com/Farouk858/product-radar/models"
	"github.com/Farouk858/product-radar/state"
	"github.com/gin-gonic/gin"
)

// Snapshot returns a handler for GET /api/v1/snapshot. It reads the
// snapshot file on every request so it always reflects the last run.
func Snapshot(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := state.Load(path)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make(map[string][]models.Product, len(snap))
		for brand, records := range snap {
			out[brand] = products(records)
		}
		c.JSON(http.StatusOK, models.SnapshotResponse{Success: true, Brands: out})
	}
}

// SnapshotBrand returns a handler for GET /api/v1/snapshot/:brand. The
// brand name is matched case-insensitively.
func SnapshotBrand(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := state.Load(path)
		if err != nil {
			respondError(c, err)
			return
		}

		want := c.Param("brand")
		for brand, records := range snap {
			if strings.EqualFold(brand, want) {
				c.JSON(http.StatusOK, models.SnapshotResponse{
					Success: true,
					Brands:  map[string][]models.Product{brand: products(records)},
				})
				return
			}
		}
		respondError(c, models.NewFetchError(models.ErrCodeNotFound, "no snapshot for brand "+want, nil))
	}
}

func products(records []state.Record) []models.Product {
	out := make([]models.Product, 0, len(records))
	for _, r := range records {
		out = append(out, models.Product{Name: r.Name, URL: r.URL, Score: r.Score, Status: r.Status})
	}
	return out
}
