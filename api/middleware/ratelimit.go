package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/models"
)

// staleAfter is how long an idle caller keeps its token bucket. The menu API
// serves a handful of identities (a few keys, or LAN addresses when auth is
// off), so stale buckets are swept inline on the next acquisition rather
// than by a background goroutine.
const staleAfter = time.Hour

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// callerBuckets hands out one token bucket per caller identity.
type callerBuckets struct {
	mu  sync.Mutex
	cfg config.RateLimitConfig
	m   map[string]*bucket
}

func (cb *callerBuckets) get(identity string) *rate.Limiter {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	for id, b := range cb.m {
		if now.Sub(b.lastSeen) > staleAfter {
			delete(cb.m, id)
		}
	}

	b, ok := cb.m[identity]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(cb.cfg.RequestsPerSecond), cb.cfg.Burst)}
		cb.m[identity] = b
	}
	b.lastSeen = now
	return b.limiter
}

// RateLimit buckets callers by API key (client IP when auth is off) and
// rejects bursts beyond the configured budget. A scrape occupies the
// sequential browser pipeline for the whole site visit, so the default
// budget is a trickle, not a typical request rate.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	buckets := &callerBuckets{
		cfg: cfg,
		m:   make(map[string]*bucket),
	}

	return func(c *gin.Context) {
		identity := c.GetString(identityKey)
		if identity == "" {
			identity = c.ClientIP()
		}

		if !buckets.get(identity).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded: each scrape ties up the browser pipeline, space requests out",
				},
			})
			return
		}

		c.Next()
	}
}
