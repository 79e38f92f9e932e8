package sampler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod"

	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/models"
	"github.com/menuhound/menuhound/stabilize"
)

// fakeSession stands in for a live page. Page returns nil; tests never take
// the code paths that need live DOM geometry.
type fakeSession struct {
	site   models.Site
	navErr error
	html   string
	closed bool
}

func (f *fakeSession) Site() models.Site                              { return f.site }
func (f *fakeSession) Page() *rod.Page                                { return nil }
func (f *fakeSession) Navigate(context.Context, time.Duration) error  { return f.navErr }
func (f *fakeSession) Title() string                                  { return "" }
func (f *fakeSession) BodyText() string                               { return "" }
func (f *fakeSession) PageHeight() int                                { return 2048 }
func (f *fakeSession) ViewportHeight() int                            { return 1024 }
func (f *fakeSession) ScrollTo(int)                                   {}
func (f *fakeSession) HTML() (string, error)                          { return f.html, nil }
func (f *fakeSession) Screenshot(path string, _ bool) (string, error) { return path, nil }
func (f *fakeSession) Close()                                         { f.closed = true }

func testSite(name string) models.Site {
	return models.Site{
		Name:    name,
		URL:     "https://" + name + ".example.sk/menu",
		Enabled: true,
	}
}

func testRunner(open func(models.Site) (Session, error), sample func(context.Context, Session) *Outcome) *Runner {
	return &Runner{
		open:      open,
		stabilize: func(context.Context, Session) {},
		sample:    sample,
		probe: func(context.Context, string) stabilize.ProbeVerdict {
			return stabilize.ProbeOK
		},
		cfg: config.SamplerConfig{
			NavigationTimeout: time.Second,
			BatchInterval:     time.Millisecond,
		},
	}
}

func emptyOutcome(context.Context, Session) *Outcome { return &Outcome{} }

func TestRunSiteNavigationFailureBecomesData(t *testing.T) {
	sess := &fakeSession{
		site: testSite("korzo"),
		navErr: models.NewMenuError(models.ErrCodeNavigation,
			"navigation to site URL failed", errors.New("net::ERR_NAME_NOT_RESOLVED")),
	}
	sampled := false
	r := testRunner(
		func(models.Site) (Session, error) { return sess, nil },
		func(context.Context, Session) *Outcome {
			sampled = true
			return &Outcome{}
		},
	)

	res, err := r.RunSite(context.Background(), sess.site)
	if err != nil {
		t.Fatalf("RunSite surfaced an error across the runner boundary: %v", err)
	}
	if res.Success {
		t.Error("navigation failure produced Success=true")
	}
	if !strings.Contains(res.Error, models.ErrCodeNavigation) {
		t.Errorf("result error = %q, want it to carry %s", res.Error, models.ErrCodeNavigation)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("items = %v, want empty non-nil slice", res.Items)
	}
	if sampled {
		t.Error("sampling ran despite the failed navigation")
	}
	if !sess.closed {
		t.Error("session was not closed after the failed run")
	}
	if res.ProbeVerdict != string(stabilize.ProbeOK) {
		t.Errorf("probe verdict = %q, want %q", res.ProbeVerdict, stabilize.ProbeOK)
	}
}

func TestRunSiteSessionOpenFailureBecomesData(t *testing.T) {
	r := testRunner(
		func(models.Site) (Session, error) {
			return nil, models.NewMenuError(models.ErrCodeBrowserCrash,
				"failed to acquire page from pool", errors.New("pool exhausted"))
		},
		emptyOutcome,
	)

	res, err := r.RunSite(context.Background(), testSite("korzo"))
	if err != nil {
		t.Fatalf("RunSite surfaced an error: %v", err)
	}
	if res.Success || res.Error == "" {
		t.Errorf("result = %+v, want a failed result carrying the open error", res)
	}
}

func TestRunSitePanicBecomesData(t *testing.T) {
	sess := &fakeSession{site: testSite("korzo")}
	r := testRunner(
		func(models.Site) (Session, error) { return sess, nil },
		func(context.Context, Session) *Outcome { panic("rod lost the browser connection") },
	)

	res, err := r.RunSite(context.Background(), sess.site)
	if err != nil {
		t.Fatalf("RunSite surfaced an error: %v", err)
	}
	if res.Success {
		t.Error("panicking run produced Success=true")
	}
	if !strings.Contains(res.Error, models.ErrCodeSiteRun) {
		t.Errorf("result error = %q, want it to carry %s", res.Error, models.ErrCodeSiteRun)
	}
	if r.State() != StateIdle {
		t.Error("runner stuck in running state after a recovered panic")
	}
}

// An empty outcome with nothing recoverable in the page is a deliberate
// terminal state: no menu today, reported as an empty successful result.
func TestRunSiteNoMenuIsEmptySuccess(t *testing.T) {
	sess := &fakeSession{
		site: testSite("korzo"),
		html: `<html><body><section><h2>Kontakt</h2><p>Dnes zatvorené.</p></section></body></html>`,
	}
	r := testRunner(func(models.Site) (Session, error) { return sess, nil }, emptyOutcome)

	res, err := r.RunSite(context.Background(), sess.site)
	if err != nil {
		t.Fatalf("RunSite surfaced an error: %v", err)
	}
	if !res.Success {
		t.Errorf("empty menu day reported as failure: %+v", res)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("items = %v, want empty non-nil slice", res.Items)
	}
	if !sess.closed {
		t.Error("session was not closed")
	}
}

// When sampling yields nothing but the final DOM carries a classifiable
// section, the static-HTML fallback pass must recover the items.
func TestRunSiteStaticFallbackRecoversItems(t *testing.T) {
	sess := &fakeSession{
		site: testSite("korzo"),
		html: `<html><body>
			<section>
			  <h2>Denné menu Pondelok</h2>
			  <ul>
			    <li>Polievka: Cesnaková 2,50 €</li>
			    <li>Menu 1: Kuracie prsia 6,90 € ryža</li>
			  </ul>
			</section>
		</body></html>`,
	}
	r := testRunner(func(models.Site) (Session, error) { return sess, nil }, emptyOutcome)

	res, err := r.RunSite(context.Background(), sess.site)
	if err != nil {
		t.Fatalf("RunSite surfaced an error: %v", err)
	}
	if !res.Success {
		t.Fatalf("fallback-recovered run reported failure: %+v", res)
	}
	if len(res.Items) != 2 {
		t.Fatalf("fallback recovered %d items, want 2", len(res.Items))
	}
	for _, item := range res.Items {
		if item.SourceStep != 0 {
			t.Errorf("item %q sourceStep = %d, want 0 for fallback recovery", item.Name, item.SourceStep)
		}
	}
	if res.SectionMarkdown == "" {
		t.Error("matched fallback section produced no markdown artifact")
	}
}

func TestRunAllContinuesPastFailedSite(t *testing.T) {
	sessions := map[string]*fakeSession{
		"broken": {
			site: testSite("broken"),
			navErr: models.NewMenuError(models.ErrCodeTimeout,
				"navigation to site URL failed", context.DeadlineExceeded),
		},
		"healthy": {site: testSite("healthy")},
	}
	r := testRunner(
		func(site models.Site) (Session, error) { return sessions[site.Name], nil },
		func(context.Context, Session) *Outcome {
			return &Outcome{Items: []models.MenuItem{{
				Name:     "Goulash",
				Price:    "3,50 €",
				Category: "Denné menu",
			}}}
		},
	)

	disabled := testSite("sleeping")
	disabled.Enabled = false

	results, err := r.RunAll(context.Background(), []models.Site{
		sessions["broken"].site,
		disabled,
		sessions["healthy"].site,
	})
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("RunAll returned %d results, want 2 (disabled site skipped)", len(results))
	}
	if results[0].Success {
		t.Error("broken site reported success")
	}
	if !results[1].Success || len(results[1].Items) != 1 {
		t.Errorf("healthy site result = %+v, want success with one item", results[1])
	}
}

func TestRunSiteRejectedWhileRunning(t *testing.T) {
	r := testRunner(
		func(models.Site) (Session, error) { return &fakeSession{site: testSite("korzo")}, nil },
		emptyOutcome,
	)
	r.state.Store(StateRunning)

	if _, err := r.RunSite(context.Background(), testSite("korzo")); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("concurrent RunSite error = %v, want ErrRunInProgress", err)
	}
	if _, err := r.RunAll(context.Background(), nil); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("concurrent RunAll error = %v, want ErrRunInProgress", err)
	}
}
