package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/menuhound/menuhound/models"
	"github.com/menuhound/menuhound/sampler"
)

// Scrape handles POST /api/v1/scrape. It runs one site through the full
// pipeline and returns the typed result. Pipeline failures arrive as result
// data (HTTP 200 with success=false); only request-level problems map to
// error statuses.
func (h *Handler) Scrape(c *gin.Context) {
	var req models.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput,
			"invalid request body: "+err.Error())
		return
	}

	site, errResp := h.resolveSite(req)
	if errResp != nil {
		respondError(c, http.StatusBadRequest, errResp.Code, errResp.Message)
		return
	}

	if !req.Fresh {
		if cached, ok := h.cache.Get(site.Name); ok {
			c.JSON(http.StatusOK, models.ScrapeResponse{
				Success: cached.Success,
				Result:  cached,
				Cache:   "hit",
			})
			return
		}
	}

	res, err := h.runner.RunSite(c.Request.Context(), site)
	if err != nil {
		if errors.Is(err, sampler.ErrRunInProgress) {
			respondError(c, http.StatusConflict, models.ErrCodeSiteRun,
				"a run is already in progress, retry later")
			return
		}
		respondError(c, http.StatusInternalServerError, models.ErrCodeInternal, err.Error())
		return
	}

	h.cache.Set(site.Name, &res)
	if h.store != nil {
		if err := h.store.Save(c.Request.Context(), res); err != nil {
			slog.Warn("failed to persist result", "site", site.Name, "error", err)
		}
	}

	c.JSON(http.StatusOK, models.ScrapeResponse{
		Success: res.Success,
		Result:  &res,
		Cache:   "miss",
	})
}

// resolveSite turns the request into a runnable site descriptor: either a
// configured site looked up by name, or an ad-hoc one built from a raw URL.
func (h *Handler) resolveSite(req models.ScrapeRequest) (models.Site, *models.ErrorDetail) {
	switch {
	case req.Site != "" && req.URL != "":
		return models.Site{}, &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: "provide either site or url, not both",
		}
	case req.Site != "":
		site, ok := h.findSite(req.Site)
		if !ok {
			return models.Site{}, &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "unknown site: " + req.Site,
			}
		}
		return site, nil
	case req.URL != "":
		u, err := url.Parse(req.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return models.Site{}, &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: "url must be absolute (http/https)",
			}
		}
		return models.Site{Name: u.Hostname(), URL: req.URL, Enabled: true}, nil
	default:
		return models.Site{}, &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: "site or url is required",
		}
	}
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, models.ScrapeResponse{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: msg},
	})
}
