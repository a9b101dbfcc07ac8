package handler

import (
	"net/http"

	"github.com/Farouk858/product-radar/extract"
	"github.com/Farouk858/product-radar/models"
	"github.com/gin-gonic/gin"
)

// Extract returns a handler for POST /api/v1/extract: rendered HTML in,
// scored candidates out. No page is fetched.
func Extract(pageCap int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondInvalid(c, err)
			return
		}

		opts := extract.Options{PageCap: pageCap}
		if req.PageCap > 0 {
			opts.PageCap = req.PageCap
		}
		res := extract.Page(req.HTML, req.URL, req.Hint, opts)

		candidates := res.Candidates
		if candidates == nil {
			candidates = []models.Product{}
		}
		c.JSON(http.StatusOK, models.ExtractResponse{
			Success:    true,
			Candidates: candidates,
			Keywords:   res.Keywords,
		})
	}
}
