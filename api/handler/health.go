package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/menuhound/menuhound/models"
	"github.com/menuhound/menuhound/sampler"
)

// Health handles GET /api/v1/health.
func (h *Handler) Health(c *gin.Context) {
	state := "idle"
	if h.runner.State() == sampler.StateRunning {
		state = "running"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		RunnerState:   state,
		Sites:         len(h.sites),
	})
}
