package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Sampler   SamplerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Cache     CacheConfig
	Log       LogConfig

	// SitesFile is the path to the YAML site list.
	SitesFile string

	// ScreenshotDir is where per-step and full-page captures are written.
	ScreenshotDir string
}

// ServerConfig controls the HTTP API server (serve mode).
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity.
	MaxPages int // default: 2

	// DefaultProxy is the proxy URL for browser traffic and the probe.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// BlockTrackers blocks requests to known analytics/ad domains.
	// Images are never blocked because the pipeline screenshots pages.
	BlockTrackers bool // default: true
}

// SamplerConfig controls the stabilize-and-sample pipeline.
type SamplerConfig struct {
	// NavigationTimeout is the max time for page.Navigate alone.
	NavigationTimeout time.Duration // default: 15s

	// RetryNavigationTimeout is the shorter deadline for the one
	// re-navigation attempted after a bot challenge was detected.
	RetryNavigationTimeout time.Duration // default: 8s

	// SettleDelay is the fixed wait after a DOM-mutating action (scroll,
	// click) before the next read.
	SettleDelay time.Duration // default: 700ms

	// ChallengeWait is how long to let a protection challenge resolve
	// before re-checking for its phrases.
	ChallengeWait time.Duration // default: 6s

	// ConsentDelay is the initial settle before consent dismissal starts.
	ConsentDelay time.Duration // default: 1500ms

	// PrimingScrollStep is the increment of the synthetic top-to-bottom
	// scroll pass that triggers lazy-load listeners.
	PrimingScrollStep int // default: 400 (px)

	// PrimingScrollDelay is the wait between priming increments.
	PrimingScrollDelay time.Duration // default: 150ms

	// BatchInterval paces sequential batch runs (one site per interval).
	BatchInterval time.Duration // default: 2s
}

// StoreConfig controls the result history database.
type StoreConfig struct {
	// Path is the SQLite database file. Empty disables persistence.
	Path string // default: "menuhound.db"
}

// CacheConfig controls the per-site result cache used by the API.
type CacheConfig struct {
	// TTL is how long a fresh scrape result is served from memory.
	TTL time.Duration // default: 10m
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("MENUHOUND_HOST", "0.0.0.0"),
			Port: envIntOr("MENUHOUND_PORT", 8080),
			Mode: envOr("MENUHOUND_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:      envBoolOr("MENUHOUND_HEADLESS", true),
			MaxPages:      envIntOr("MENUHOUND_MAX_PAGES", 2),
			DefaultProxy:  os.Getenv("MENUHOUND_PROXY"),
			NoSandbox:     envBoolOr("MENUHOUND_NO_SANDBOX", false),
			BrowserBin:    os.Getenv("MENUHOUND_BROWSER_BIN"),
			BlockTrackers: envBoolOr("MENUHOUND_BLOCK_TRACKERS", true),
		},
		Sampler: SamplerConfig{
			NavigationTimeout:      envDurationOr("MENUHOUND_NAV_TIMEOUT", 15*time.Second),
			RetryNavigationTimeout: envDurationOr("MENUHOUND_RETRY_NAV_TIMEOUT", 8*time.Second),
			SettleDelay:            envDurationOr("MENUHOUND_SETTLE_DELAY", 700*time.Millisecond),
			ChallengeWait:          envDurationOr("MENUHOUND_CHALLENGE_WAIT", 6*time.Second),
			ConsentDelay:           envDurationOr("MENUHOUND_CONSENT_DELAY", 1500*time.Millisecond),
			PrimingScrollStep:      envIntOr("MENUHOUND_PRIMING_STEP", 400),
			PrimingScrollDelay:     envDurationOr("MENUHOUND_PRIMING_DELAY", 150*time.Millisecond),
			BatchInterval:          envDurationOr("MENUHOUND_BATCH_INTERVAL", 2*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("MENUHOUND_AUTH_ENABLED", true),
			APIKeys: envSliceOr("MENUHOUND_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("MENUHOUND_RATE_RPS", 2.0),
			Burst:             envIntOr("MENUHOUND_RATE_BURST", 5),
		},
		Store: StoreConfig{
			Path: envOr("MENUHOUND_DB", "menuhound.db"),
		},
		Cache: CacheConfig{
			TTL: envDurationOr("MENUHOUND_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("MENUHOUND_LOG_LEVEL", "info"),
			Format: envOr("MENUHOUND_LOG_FORMAT", "json"),
		},
		SitesFile:     envOr("MENUHOUND_SITES", "sites.yaml"),
		ScreenshotDir: envOr("MENUHOUND_SCREENSHOT_DIR", "screenshots"),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
