package models

// ScrapeRequest is the payload for POST /api/v1/scrape. Exactly one of Site
// (a configured site name) or URL (an ad-hoc target) must be set.
type ScrapeRequest struct {
	// Site names a configured site to run.
	Site string `json:"site,omitempty"`

	// URL runs an ad-hoc, unconfigured target.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// Fresh bypasses the result cache.
	Fresh bool `json:"fresh,omitempty"`
}

// ScrapeResponse is the body for scrape and results endpoints.
type ScrapeResponse struct {
	Success bool         `json:"success"`
	Result  *SiteResult  `json:"result,omitempty"`
	Cache   string       `json:"cache,omitempty"` // "hit" or "miss"
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ResultsResponse is the body for GET /api/v1/results/:site.
type ResultsResponse struct {
	Success bool         `json:"success"`
	Site    string       `json:"site"`
	Results []SiteResult `json:"results"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SitesResponse lists the configured sites.
type SitesResponse struct {
	Sites []Site `json:"sites"`
}

// HealthResponse is the body for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	RunnerState   string `json:"runner_state"` // "idle" or "running"
	Sites         int    `json:"sites"`
}
