package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/menuhound/menuhound/models"
)

// Results handles GET /api/v1/results/:site. It serves persisted history,
// newest first. ?limit=N caps the number of runs returned (default 10).
func (h *Handler) Results(c *gin.Context) {
	if h.store == nil {
		respondError(c, http.StatusServiceUnavailable, models.ErrCodeInternal,
			"result persistence is disabled")
		return
	}

	site := c.Param("site")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	results, err := h.store.Recent(c.Request.Context(), site, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternal, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.ResultsResponse{
		Success: true,
		Site:    site,
		Results: results,
	})
}

// Sites handles GET /api/v1/sites.
func (h *Handler) Sites(c *gin.Context) {
	c.JSON(http.StatusOK, models.SitesResponse{Sites: h.sites})
}
