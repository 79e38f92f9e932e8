// Package sampler drives the progressive viewport capture: it slices a
// potentially tall page into a bounded number of scroll steps, screenshots
// each, and runs the classifier and item parser against the DOM state at
// every position. Lazy-rendered content only materialises near the visible
// viewport, which is the whole reason this loop exists.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/menuhound/menuhound/classify"
	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/menuparse"
	"github.com/menuhound/menuhound/models"
)

// MaxViewportSteps caps how many vertical slices are sampled regardless of
// true page length. Pages taller than this many viewports only get their
// first slices sampled; raise it for unusually long pages at the cost of one
// settle delay and one screenshot per extra step.
const MaxViewportSteps = 3

// screenshotTimeLayout is an ISO-like timestamp without colons, safe in
// filenames on every platform.
const screenshotTimeLayout = "2006-01-02T150405"

// StepsFor returns how many viewport steps a page of the given height needs,
// capped at MaxViewportSteps and never less than one.
func StepsFor(pageHeight, viewportHeight int) int {
	if viewportHeight <= 0 || pageHeight <= 0 {
		return 1
	}
	steps := (pageHeight + viewportHeight - 1) / viewportHeight
	if steps < 1 {
		return 1
	}
	if steps > MaxViewportSteps {
		return MaxViewportSteps
	}
	return steps
}

// ScreenshotAnalyzer receives every captured screenshot. The default is a
// no-op; image analysis is out of scope for this pipeline.
type ScreenshotAnalyzer interface {
	Analyze(ctx context.Context, path string) error
}

type noopAnalyzer struct{}

func (noopAnalyzer) Analyze(context.Context, string) error { return nil }

// BestViewport remembers the step whose classifier match had the most
// visible item children. It is only a scroll anchor for the fallback path,
// never an ownership relation.
type BestViewport struct {
	Found        bool
	Index        int // 1-based step index
	ScrollOffset int
	ChildCount   int
}

// Outcome is everything one sampling pass produced.
type Outcome struct {
	Items       []models.MenuItem
	Screenshots []string
	Best        BestViewport

	// SectionHTML is the richest matched section's outer HTML, kept for
	// the markdown artifact.
	SectionHTML string
}

// Sampler performs the progressive capture for one page session at a time.
type Sampler struct {
	cfg      config.SamplerConfig
	shotDir  string
	analyzer ScreenshotAnalyzer
}

// New creates a Sampler writing screenshots under shotDir.
func New(cfg config.SamplerConfig, shotDir string) *Sampler {
	return &Sampler{cfg: cfg, shotDir: shotDir, analyzer: noopAnalyzer{}}
}

// Sample runs the full progressive capture over the session's page. Every
// per-step failure is recovered locally; the outcome at worst carries fewer
// items and fewer screenshots.
func (s *Sampler) Sample(ctx context.Context, sess Session) *Outcome {
	site := sess.Site()
	out := &Outcome{}

	viewportHeight := sess.ViewportHeight()
	pageHeight := sess.PageHeight()
	steps := StepsFor(pageHeight, viewportHeight)
	slog.Info("sampling page",
		"site", site.Name,
		"pageHeight", pageHeight,
		"viewportHeight", viewportHeight,
		"steps", steps,
	)

	s.primeLazyLoad(ctx, sess, pageHeight)

	stamp := time.Now().Format(screenshotTimeLayout)

	for i := 0; i < steps; i++ {
		if ctx.Err() != nil {
			slog.Warn("sampling aborted by deadline", "site", site.Name, "step", i+1)
			break
		}

		offset := i * viewportHeight
		sess.ScrollTo(offset)
		s.settle(ctx)

		shot := filepath.Join(s.shotDir, fmt.Sprintf("%s-%s-step%d.png", site.Name, stamp, i+1))
		if path, err := sess.Screenshot(shot, false); err != nil {
			slog.Warn("step screenshot failed", "site", site.Name, "step", i+1, "error", err)
		} else {
			out.Screenshots = append(out.Screenshots, path)
			if err := s.analyzer.Analyze(ctx, path); err != nil {
				slog.Debug("screenshot analyzer failed", "path", path, "error", err)
			}
		}

		match := classify.Locate(sess.Page(), float64(viewportHeight))
		if match == nil {
			slog.Debug("no menu section at this step", "site", site.Name, "step", i+1)
			continue
		}

		// Parsing is attempted opportunistically at every step, even when
		// the match is not confidently inside the viewport.
		items := menuparse.ParseSection(match.ChildTexts, classify.Category(match.Heading), i+1)
		out.Items = append(out.Items, items...)
		slog.Debug("step extracted",
			"site", site.Name, "step", i+1,
			"children", match.ChildCount(), "items", len(items), "visible", match.Visible,
		)

		if match.Visible && match.ChildCount() > out.Best.ChildCount {
			out.Best = BestViewport{
				Found:        true,
				Index:        i + 1,
				ScrollOffset: offset,
				ChildCount:   match.ChildCount(),
			}
		}
		if len(match.HTML) > len(out.SectionHTML) {
			out.SectionHTML = match.HTML
		}
	}

	// Durable fallback artifact, always captured regardless of step outcomes.
	sess.ScrollTo(0)
	s.settle(ctx)
	full := filepath.Join(s.shotDir, fmt.Sprintf("%s-%s.png", site.Name, stamp))
	if path, err := sess.Screenshot(full, true); err != nil {
		slog.Warn("full-page screenshot failed", "site", site.Name, "error", err)
	} else {
		out.Screenshots = append(out.Screenshots, path)
	}

	out.Items = Dedupe(out.Items)
	return out
}

// primeLazyLoad forces one synthetic top-to-bottom scroll pass in fixed
// increments so lazy-load listeners fire before sampling starts, then
// returns to the top.
func (s *Sampler) primeLazyLoad(ctx context.Context, sess Session, pageHeight int) {
	step := s.cfg.PrimingScrollStep
	if step <= 0 {
		step = 400
	}
	for y := 0; y <= pageHeight; y += step {
		if ctx.Err() != nil {
			break
		}
		sess.ScrollTo(y)
		sleep(ctx, s.cfg.PrimingScrollDelay)
	}
	sess.ScrollTo(0)
	s.settle(ctx)
}

func (s *Sampler) settle(ctx context.Context) {
	sleep(ctx, s.cfg.SettleDelay)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
