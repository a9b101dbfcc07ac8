// Package api serves the radar over HTTP.
package api

import (
	"time"

	"github.com/Farouk858/product-radar/api/handler"
	"github.com/Farouk858/product-radar/api/middleware"
	"github.com/Farouk858/product-radar/cache"
	"github.com/Farouk858/product-radar/config"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Scanner    handler.Scanner
	Cache      *cache.Cache
	Pool       handler.PoolReporter // nil without a browser
	EngineName string
	StartTime  time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health stays outside auth so monitoring probes always work.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(deps.Pool, deps.EngineName, deps.StartTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.GET("/snapshot", handler.Snapshot(cfg.Paths.State))
	protected.GET("/snapshot/:brand", handler.SnapshotBrand(cfg.Paths.State))
	protected.POST("/extract", handler.Extract(cfg.Limits.PageCap))
	protected.POST("/scan", handler.Scan(deps.Scanner, deps.Cache))

	return r
}
