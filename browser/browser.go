// Package browser owns the headless Chromium lifecycle and hands out page
// sessions. One session is exclusively owned by one site run and is returned
// to the pool when the run ends, success or not.
package browser

import (
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/models"
)

// Browser manages the global browser process and the page pool.
// It is safe for concurrent use, though the pipeline itself runs sites
// strictly sequentially.
type Browser struct {
	browser   *rod.Browser
	pagePool  rod.Pool[rod.Page]
	cfg       config.BrowserConfig
	startTime time.Time
}

// New launches a headless browser with anti-automation-detection flags and
// initialises the reusable page pool.
func New(cfg config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	// Stealth flags: restaurant sites increasingly sit behind bot
	// protection, so the browser must not advertise automation.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewMenuError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewMenuError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Browser{
		browser:   b,
		pagePool:  rod.NewPagePool(cfg.MaxPages),
		cfg:       cfg,
		startTime: time.Now(),
	}, nil
}

// Uptime reports how long the browser process has been alive.
func (b *Browser) Uptime() time.Duration {
	return time.Since(b.startTime)
}

// Close drains the page pool and kills the browser process. Call on
// shutdown to prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down: draining page pool")
	b.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	b.browser.MustClose()
	slog.Info("browser shutdown complete")
}
