// Package middleware guards the menu API. Every authorized request can tie
// up the single browser pipeline for many seconds, so the gate here is
// deliberately stricter than a typical read API would need.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/menuhound/menuhound/models"
)

// identityKey is the gin context key under which Auth records the caller's
// key. RateLimit reads it to bucket callers per key rather than per address.
const identityKey = "api_key"

// Auth authenticates callers of the scrape and results endpoints against a
// static key list. Keys are accepted from either header:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// With no keys configured the API runs open, which only makes sense for a
// single-user local setup.
func Auth(apiKeys []string) gin.HandlerFunc {
	keys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := requestKey(c)
		if key == "" {
			abortUnauthorized(c, "missing API key: set X-API-Key or Authorization: Bearer <key>")
			return
		}
		if !keyMatches(key, keys) {
			abortUnauthorized(c, "invalid API key")
			return
		}
		c.Set(identityKey, key)
		c.Next()
	}
}

// requestKey reads the caller's key, preferring the dedicated header over
// the Authorization form.
func requestKey(c *gin.Context) string {
	if k := c.GetHeader("X-API-Key"); k != "" {
		return k
	}
	if bearer, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return bearer
	}
	return ""
}

// keyMatches compares the candidate against every configured key in constant
// time, so response timing reveals nothing about key contents.
func keyMatches(candidate string, keys []string) bool {
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(k)) == 1 {
			return true
		}
	}
	return false
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ScrapeResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}
