package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"golang.org/x/time/rate"

	"github.com/menuhound/menuhound/browser"
	"github.com/menuhound/menuhound/classify"
	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/menuparse"
	"github.com/menuhound/menuhound/models"
	"github.com/menuhound/menuhound/report"
	"github.com/menuhound/menuhound/stabilize"
)

// Session is the slice of a live page session the pipeline drives. It is
// satisfied by *browser.Session; the indirection keeps the runner's
// failure-to-data boundary exercisable without a browser.
type Session interface {
	Site() models.Site
	Page() *rod.Page
	Navigate(ctx context.Context, timeout time.Duration) error
	Title() string
	BodyText() string
	PageHeight() int
	ViewportHeight() int
	ScrollTo(y int)
	HTML() (string, error)
	Screenshot(path string, fullPage bool) (string, error)
	Close()
}

// Runner states. The run state is an explicit enum owned by the runner, not
// an ambient flag; callers poll State or get ErrRunInProgress.
const (
	StateIdle int32 = iota
	StateRunning
)

// ErrRunInProgress is returned when a run is requested while another one is
// still executing. The pipeline is strictly sequential by design.
var ErrRunInProgress = models.NewMenuError(
	models.ErrCodeSiteRun, "a run is already in progress", nil)

// Runner sequences stabilize → sample → aggregate for one site and converts
// every failure into result data. Nothing below the runner ever surfaces an
// error to the batch caller.
type Runner struct {
	open      func(models.Site) (Session, error)
	stabilize func(context.Context, Session)
	sample    func(context.Context, Session) *Outcome
	probe     func(context.Context, string) stabilize.ProbeVerdict
	cfg       config.SamplerConfig
	state     atomic.Int32
}

// NewRunner wires the pipeline for the given browser.
func NewRunner(b *browser.Browser, cfg config.SamplerConfig, shotDir, proxy string) *Runner {
	st := stabilize.New(cfg)
	smp := New(cfg, shotDir)

	return &Runner{
		open: func(site models.Site) (Session, error) {
			return b.NewSession(site)
		},
		stabilize: func(ctx context.Context, sess Session) {
			st.Stabilize(ctx, sess)
		},
		sample: func(ctx context.Context, sess Session) *Outcome {
			return smp.Sample(ctx, sess)
		},
		probe: func(ctx context.Context, url string) stabilize.ProbeVerdict {
			return stabilize.Probe(ctx, url, proxy)
		},
		cfg: cfg,
	}
}

// State reports whether a run is currently executing.
func (r *Runner) State() int32 { return r.state.Load() }

// RunSite visits one site and returns its typed outcome. A failed
// navigation, a panic in a dependency or an expired deadline is converted
// into a result with Success=false; the error never propagates.
func (r *Runner) RunSite(ctx context.Context, site models.Site) (models.SiteResult, error) {
	if !r.state.CompareAndSwap(StateIdle, StateRunning) {
		return models.SiteResult{}, ErrRunInProgress
	}
	defer r.state.Store(StateIdle)

	return r.runSite(ctx, site), nil
}

// RunAll visits every enabled site strictly sequentially: one site's full
// cycle completes (success or caught failure) before the next begins. One
// site's total failure never prevents the others from being attempted.
func (r *Runner) RunAll(ctx context.Context, sites []models.Site) ([]models.SiteResult, error) {
	if !r.state.CompareAndSwap(StateIdle, StateRunning) {
		return nil, ErrRunInProgress
	}
	defer r.state.Store(StateIdle)

	limiter := rate.NewLimiter(rate.Every(r.cfg.BatchInterval), 1)

	results := make([]models.SiteResult, 0, len(sites))
	for _, site := range sites {
		if !site.Enabled {
			slog.Info("site disabled, skipping", "site", site.Name)
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			slog.Warn("batch aborted", "error", err)
			break
		}
		res := r.runSite(ctx, site)
		slog.Info("site finished",
			"site", site.Name, "success", res.Success,
			"items", len(res.Items), "error", res.Error,
		)
		results = append(results, res)
	}
	return results, nil
}

// runSite is the single-site pipeline body.
func (r *Runner) runSite(ctx context.Context, site models.Site) (res models.SiteResult) {
	res = models.SiteResult{
		Site:      site.Name,
		URL:       site.URL,
		Items:     []models.MenuItem{},
		ScrapedAt: time.Now(),
	}

	// The runner boundary: anything that escapes the steps below becomes
	// result data, never a raised error.
	defer func() {
		if rec := recover(); rec != nil {
			res.Success = false
			res.Error = fmt.Sprintf("%s: panic during site run: %v", models.ErrCodeSiteRun, rec)
			slog.Error("site run panicked", "site", site.Name, "panic", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, site.Timeout())
	defer cancel()

	// Advisory pre-flight: tells us what to expect, blocks nothing.
	verdict := r.probe(ctx, site.URL)
	res.ProbeVerdict = string(verdict)
	slog.Debug("pre-flight probe", "site", site.Name, "verdict", verdict)

	sess, err := r.open(site)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer sess.Close()

	if err := sess.Navigate(ctx, r.cfg.NavigationTimeout); err != nil {
		res.Error = err.Error()
		return res
	}

	r.stabilize(ctx, sess)

	out := r.sample(ctx, sess)
	res.ScreenshotPaths = out.Screenshots

	items := out.Items
	if len(items) == 0 {
		items = r.fallback(ctx, sess, out)
	}
	if items == nil {
		// Deliberate terminal state: the site has no menu available today.
		items = []models.MenuItem{}
		slog.Info("no menu found after fallback cascade", "site", site.Name)
	}
	res.Items = items

	if out.SectionHTML != "" {
		if md, err := report.SectionMarkdown(out.SectionHTML, site.URL); err == nil {
			res.SectionMarkdown = md
		} else {
			slog.Debug("section markdown failed", "site", site.Name, "error", err)
		}
	}

	res.Success = true
	return res
}

// fallback is the cascade applied when progressive capture yielded nothing:
// re-extract anchored at the best viewport, then classify the static HTML,
// then salvage readable text. A nil return means "no menu available", which
// the caller records as an empty, successful result.
func (r *Runner) fallback(ctx context.Context, sess Session, out *Outcome) []models.MenuItem {
	site := sess.Site()

	if out.Best.Found {
		slog.Info("fallback: re-extracting at best viewport",
			"site", site.Name, "step", out.Best.Index, "offset", out.Best.ScrollOffset)
		sess.ScrollTo(out.Best.ScrollOffset)
		sleep(ctx, r.cfg.SettleDelay)

		if match := classify.Locate(sess.Page(), float64(sess.ViewportHeight())); match != nil {
			if len(match.HTML) > len(out.SectionHTML) {
				out.SectionHTML = match.HTML
			}
			items := menuparse.ParseSection(match.ChildTexts, classify.Category(match.Heading), out.Best.Index)
			if len(items) > 0 {
				return Dedupe(items)
			}
		}
	}

	html, err := sess.HTML()
	if err != nil {
		slog.Warn("fallback: page HTML unavailable", "site", site.Name, "error", err)
		return nil
	}

	if match, ok := classify.FromHTML(html); ok {
		if len(match.HTML) > len(out.SectionHTML) {
			out.SectionHTML = match.HTML
		}
		items := menuparse.ParseSection(match.ChildTexts, classify.Category(match.Heading), 0)
		if len(items) > 0 {
			slog.Info("fallback: static HTML pass recovered items",
				"site", site.Name, "items", len(items))
			return Dedupe(items)
		}
	}

	lines := report.SalvageLines(html, site.URL)
	items := menuparse.ParseSection(lines, menuparse.DefaultCategory, 0)
	if len(items) > 0 {
		slog.Info("fallback: readability salvage recovered items",
			"site", site.Name, "items", len(items))
		return Dedupe(items)
	}

	return nil
}
