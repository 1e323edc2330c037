package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/visper-inc/cartoondl/api/handler"
	"github.com/visper-inc/cartoondl/api/middleware"
	"github.com/visper-inc/cartoondl/cache"
	"github.com/visper-inc/cartoondl/config"
	"github.com/visper-inc/cartoondl/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
// Background work started by middleware ends when ctx is cancelled.
func NewRouter(ctx context.Context, f scraper.Fetcher, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDs())
	r.Use(gin.Logger())
	r.NoMethod(handler.MethodNotAllowed())
	r.NoRoute(handler.NotFound())

	a := r.Group("/api")

	// Health — no auth required.
	a.GET("/health", handler.Health(cc, startTime))

	protected := a.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(ctx, cfg.RateLimit))

	protected.GET("/download", handler.Download(f, cc, cfg.Fetch.AllowedPrefix))

	return r
}
