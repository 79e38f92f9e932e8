// Package api assembles the gin router for the menu extraction service.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/menuhound/menuhound/api/handler"
	"github.com/menuhound/menuhound/api/middleware"
	"github.com/menuhound/menuhound/cache"
	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/models"
	"github.com/menuhound/menuhound/sampler"
	"github.com/menuhound/menuhound/store"
)

// NewRouter builds the HTTP API. The health endpoint is open; everything
// else sits behind auth (when enabled) and per-identity rate limiting.
func NewRouter(cfg *config.Config, runner *sampler.Runner, sites []models.Site, st *store.Store, c *cache.Cache) *gin.Engine {
	gin.SetMode(ginMode(cfg.Server.Mode))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	h := handler.New(runner, sites, st, c)

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health)

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))
	{
		protected.POST("/scrape", h.Scrape)
		protected.GET("/results/:site", h.Results)
		protected.GET("/sites", h.Sites)
	}

	return r
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	default:
		return gin.ReleaseMode
	}
}
