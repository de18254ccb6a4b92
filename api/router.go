package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ByteMe6/rozetka-scrapper/api/handler"
	"github.com/ByteMe6/rozetka-scrapper/api/middleware"
	"github.com/ByteMe6/rozetka-scrapper/browser"
	"github.com/ByteMe6/rozetka-scrapper/config"
	"github.com/ByteMe6/rozetka-scrapper/service"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always
// work. The legacy /update endpoint sits behind the same protection as the
// v1 routes.
func NewRouter(svc *service.Service, pool *browser.Pool, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(pool, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Single price lookup
	protected.POST("/price", handler.Price(svc))

	// Batch
	protected.POST("/prices", handler.Prices(svc, cfg.Batch.MaxURLs))
	protected.POST("/prices/async", handler.PricesAsync(svc, cfg.Batch.MaxURLs))

	// Legacy bot contract.
	legacy := r.Group("")
	if cfg.Auth.Enabled {
		legacy.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	legacy.Use(middleware.RateLimit(cfg.RateLimit))
	legacy.POST("/update", handler.Update(svc, cfg.Batch.MaxURLs))

	return r
}
