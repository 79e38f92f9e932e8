// Package handler contains the gin handlers for the menu extraction API.
package handler

import (
	"time"

	"github.com/menuhound/menuhound/cache"
	"github.com/menuhound/menuhound/models"
	"github.com/menuhound/menuhound/sampler"
	"github.com/menuhound/menuhound/store"
)

// Handler bundles the pipeline pieces the API endpoints operate on.
type Handler struct {
	runner  *sampler.Runner
	sites   []models.Site
	store   *store.Store // nil when persistence is disabled
	cache   *cache.Cache
	started time.Time
}

// New builds a Handler. store may be nil.
func New(runner *sampler.Runner, sites []models.Site, st *store.Store, c *cache.Cache) *Handler {
	return &Handler{
		runner:  runner,
		sites:   sites,
		store:   st,
		cache:   c,
		started: time.Now(),
	}
}

// findSite returns the configured site with the given name.
func (h *Handler) findSite(name string) (models.Site, bool) {
	for _, s := range h.sites {
		if s.Name == name {
			return s, true
		}
	}
	return models.Site{}, false
}
