package browser

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/menuhound/menuhound/models"
)

// domStablePoll and domStableDiff tune rod's DOM-stability wait after
// navigation and selector waits.
const (
	domStablePoll   = 300 * time.Millisecond
	domStableDiff   = 0.1
	selectorWait    = 8 * time.Second
	defaultViewport = 1024
)

// Session is the live page handle for one site visit. It is exclusively
// owned by the site run that created it and must be Closed at the end of the
// run regardless of outcome.
type Session struct {
	page   *rod.Page
	router *rod.HijackRouter
	site   models.Site
	pool   rod.Pool[rod.Page]
}

// NewSession borrows a page from the pool and prepares it for the site:
// stealth JS and the tracker blocker are installed before any navigation,
// because neither takes effect for navigations that precede them.
func (b *Browser) NewSession(site models.Site) (*Session, error) {
	page, err := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return nil, models.NewMenuError(
			models.ErrCodeBrowserCrash,
			"failed to acquire page from pool",
			err,
		)
	}

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"site", site.Name, "error", err)
	}

	// A plausible Referer makes protection layers noticeably less jumpy.
	if u, err := url.Parse(site.URL); err == nil {
		headers := proto.NetworkHeaders{
			"Referer": gson.New("https://www.google.com/search?q=" + url.QueryEscape(u.Hostname())),
		}
		_ = proto.NetworkSetExtraHTTPHeaders{Headers: headers}.Call(page)
	}

	var router *rod.HijackRouter
	if b.cfg.BlockTrackers {
		router = mountTrackerBlock(page)
	}

	return &Session{page: page, router: router, site: site, pool: b.pagePool}, nil
}

// Site returns the immutable site descriptor this session was opened for.
func (s *Session) Site() models.Site { return s.site }

// Page exposes the underlying rod page for element-level work
// (classification, consent clicks).
func (s *Session) Page() *rod.Page { return s.page }

// Navigate loads the site URL under the given timeout, waits for the DOM to
// stabilise, and honours the site's wait-selector when one is configured.
func (s *Session) Navigate(ctx context.Context, timeout time.Duration) error {
	nctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := s.page.Context(nctx)
	if err := p.Navigate(s.site.URL); err != nil {
		return categorizeError(err, "navigation to site URL failed")
	}

	if err := p.WaitDOMStable(domStablePoll, domStableDiff); err != nil {
		slog.Debug("DOM did not stabilise, proceeding with current state",
			"site", s.site.Name, "error", err)
	}

	if s.site.WaitSelector != "" {
		if err := p.Timeout(selectorWait).WaitElementsMoreThan(s.site.WaitSelector, 0); err != nil {
			slog.Warn("wait selector never appeared, proceeding anyway",
				"site", s.site.Name, "selector", s.site.WaitSelector, "error", err)
		}
	}
	return nil
}

// Title returns document.title, best-effort.
func (s *Session) Title() string {
	return s.evalString(`() => document.title`)
}

// BodyText returns the page body's rendered text, best-effort.
func (s *Session) BodyText() string {
	return s.evalString(`() => document.body ? document.body.innerText : ""`)
}

// PageHeight returns the full scrollable height in pixels.
func (s *Session) PageHeight() int {
	res, err := s.page.Eval(`() => Math.max(
		document.body ? document.body.scrollHeight : 0,
		document.documentElement.scrollHeight)`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// ViewportHeight returns window.innerHeight, with a sane default when the
// evaluation fails.
func (s *Session) ViewportHeight() int {
	res, err := s.page.Eval(`() => window.innerHeight`)
	if err != nil || res.Value.Int() <= 0 {
		return defaultViewport
	}
	return res.Value.Int()
}

// ScrollTo jumps to an absolute vertical offset.
func (s *Session) ScrollTo(y int) {
	if _, err := s.page.Eval(`(y) => window.scrollTo(0, y)`, y); err != nil {
		slog.Debug("scroll failed", "site", s.site.Name, "offset", y, "error", err)
	}
}

// HTML returns the page's current rendered HTML.
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", categorizeError(err, "failed to extract page HTML")
	}
	return html, nil
}

// Screenshot captures the current viewport (or the full page) to path and
// returns the path written.
func (s *Session) Screenshot(path string, fullPage bool) (string, error) {
	data, err := s.page.Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", categorizeError(err, "screenshot capture failed")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", models.NewMenuError(models.ErrCodeInternal, "screenshot write failed", err)
	}
	return path, nil
}

// Close parks the page on about:blank and returns it to the pool. The
// original page reference is used (not a context-bound one) so cleanup
// succeeds even when the run's context has expired.
func (s *Session) Close() {
	if s.router != nil {
		_ = s.router.Stop()
	}
	if err := s.page.Navigate("about:blank"); err != nil {
		slog.Warn("cleanup: failed to navigate to about:blank", "error", err)
	}
	s.pool.Put(s.page)
}

func (s *Session) evalString(js string) string {
	res, err := s.page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeError wraps raw errors into typed MenuErrors so the runner can
// report a meaningful code on the result.
func categorizeError(err error, msg string) *models.MenuError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewMenuError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewMenuError(models.ErrCodeTimeout, "run canceled", err)
	default:
		return models.NewMenuError(models.ErrCodeNavigation, msg, err)
	}
}
