package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/menu", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(identityKey))
	})
	return r
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		header     string
		value      string
		wantStatus int
	}{
		{
			name:       "valid X-API-Key",
			keys:       []string{"lunch-key"},
			header:     "X-API-Key",
			value:      "lunch-key",
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid bearer token",
			keys:       []string{"lunch-key"},
			header:     "Authorization",
			value:      "Bearer lunch-key",
			wantStatus: http.StatusOK,
		},
		{
			name:       "second configured key accepted",
			keys:       []string{"lunch-key", "dinner-key"},
			header:     "X-API-Key",
			value:      "dinner-key",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong key rejected",
			keys:       []string{"lunch-key"},
			header:     "X-API-Key",
			value:      "guess",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing key rejected",
			keys:       []string{"lunch-key"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed authorization rejected",
			keys:       []string{"lunch-key"},
			header:     "Authorization",
			value:      "Basic lunch-key",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no configured keys means open access",
			keys:       nil,
			wantStatus: http.StatusOK,
		},
		{
			name:       "blank configured keys mean open access",
			keys:       []string{""},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := authRouter(tt.keys)
			req := httptest.NewRequest(http.MethodGet, "/menu", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

// Auth must record the caller's key so the rate limiter buckets per key.
func TestAuthRecordsIdentity(t *testing.T) {
	r := authRouter([]string{"lunch-key"})
	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	req.Header.Set("X-API-Key", "lunch-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Body.String(); got != "lunch-key" {
		t.Errorf("recorded identity = %q, want the presented key", got)
	}
}
