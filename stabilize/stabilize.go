// Package stabilize brings a freshly navigated page into a stable,
// content-visible state: it detects and waits out bot-protection challenges
// and clears consent overlays. Every step is best-effort: the pipeline
// always proceeds to sampling, at worst with degraded data.
package stabilize

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/models"
)

// Session is the slice of a live page session stabilization needs. It is
// satisfied by *browser.Session.
type Session interface {
	Site() models.Site
	Page() *rod.Page
	Title() string
	BodyText() string
	Navigate(ctx context.Context, timeout time.Duration) error
	ViewportHeight() int
}

// challengePhrases identify bot-protection interstitials by page title or
// body text, case-insensitive.
var challengePhrases = []string{
	"verifying you are human",
	"checking your browser",
	"cloudflare",
	"just a moment",
	"ddos protection",
	"attention required",
	"enable javascript and cookies",
}

// consentTexts are button labels tried in priority order, Slovak before
// English since most target sites are Slovak.
var consentTexts = []string{
	"prijať všetko",
	"prijat vsetko",
	"súhlasím",
	"suhlasim",
	"prijať",
	"akceptovať",
	"povoliť všetko",
	"rozumiem",
	"accept all",
	"accept cookies",
	"i agree",
	"allow all",
	"accept",
	"agree",
	"got it",
}

// consentContainerSelectors are attribute-pattern fallbacks: the first
// visible button inside a cookie/consent container.
var consentContainerSelectors = []string{
	"#onetrust-accept-btn-handler",
	".cc-allow",
	`[id*="cookie" i] button`,
	`[class*="cookie" i] button`,
	`[id*="consent" i] button`,
	`[class*="consent" i] button`,
	`[class*="gdpr" i] button`,
}

// genericOverlaySelector is the last resort: any visible dialog/modal/popup
// container's first button.
const genericOverlaySelector = `[role="dialog"] button, [class*="modal" i] button, [class*="popup" i] button`

// buttonSelector enumerates clickable candidates for the text-match pass.
const buttonSelector = `button, a, input[type="submit"], [role="button"]`

// ChallengePresent reports whether title or body text contains a known
// protection-challenge phrase. Pure; shared by the probe and the live check.
func ChallengePresent(title, body string) bool {
	t := strings.ToLower(title)
	b := strings.ToLower(body)
	for _, phrase := range challengePhrases {
		if strings.Contains(t, phrase) || strings.Contains(b, phrase) {
			return true
		}
	}
	return false
}

// Stabilizer clears protection challenges and consent overlays on a page
// session before sampling starts.
type Stabilizer struct {
	cfg config.SamplerConfig
}

// New creates a Stabilizer.
func New(cfg config.SamplerConfig) *Stabilizer {
	return &Stabilizer{cfg: cfg}
}

// Stabilize returns once the page is as stable as best effort allows. It
// never fails: a challenge that will not clear is logged and the caller
// proceeds regardless.
func (st *Stabilizer) Stabilize(ctx context.Context, sess Session) {
	site := sess.Site()

	if ChallengePresent(sess.Title(), sess.BodyText()) {
		slog.Info("protection challenge detected, waiting for it to settle",
			"site", site.Name, "wait", st.cfg.ChallengeWait)
		sleep(ctx, st.cfg.ChallengeWait)

		if ChallengePresent(sess.Title(), sess.BodyText()) {
			slog.Warn("page still protected after wait, proceeding anyway",
				"site", site.Name, "code", models.ErrCodeChallengeUnresolved)
		}

		// One re-navigation with a shorter timeout sometimes lands on the
		// real page once the challenge cookie is set. Failure is swallowed.
		if err := sess.Navigate(ctx, st.cfg.RetryNavigationTimeout); err != nil {
			slog.Warn("re-navigation after challenge failed",
				"site", site.Name, "error", err)
		}
	}

	sleep(ctx, st.cfg.ConsentDelay)
	st.dismissConsent(sess)

	if len(site.ConsentSteps) > 0 {
		if err := ExecuteConsentSteps(ctx, sess, site.ConsentSteps); err != nil {
			slog.Warn("site consent steps failed, proceeding anyway",
				"site", site.Name, "error", err)
		}
	}
}

// dismissConsent tries the prioritized consent cascade and clicks the first
// visible match. Absence of any match is a normal outcome.
func (st *Stabilizer) dismissConsent(sess Session) {
	site := sess.Site()
	page := sess.Page()

	// 1. Button-text matches, in phrase priority order.
	if els, err := page.Elements(buttonSelector); err == nil {
		for _, phrase := range consentTexts {
			for _, el := range els {
				text, err := el.Text()
				if err != nil || !strings.Contains(strings.ToLower(text), phrase) {
					continue
				}
				if clickIfVisible(el) {
					slog.Info("consent dismissed via button text",
						"site", site.Name, "phrase", phrase)
					sleep(context.Background(), st.cfg.SettleDelay)
					return
				}
			}
		}
	}

	// 2. Attribute-pattern containers.
	for _, sel := range consentContainerSelectors {
		els, err := page.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if clickIfVisible(el) {
				slog.Info("consent dismissed via container selector",
					"site", site.Name, "selector", sel)
				sleep(context.Background(), st.cfg.SettleDelay)
				return
			}
		}
	}

	// 3. Generic overlay fallback: first visible button in any dialog.
	if els, err := page.Elements(genericOverlaySelector); err == nil {
		for _, el := range els {
			if clickIfVisible(el) {
				slog.Info("consent dismissed via generic overlay button",
					"site", site.Name)
				sleep(context.Background(), st.cfg.SettleDelay)
				return
			}
		}
	}

	slog.Debug("no consent overlay to dismiss", "site", site.Name)
}

func clickIfVisible(el *rod.Element) bool {
	visible, err := el.Visible()
	if err != nil || !visible {
		return false
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		slog.Warn("consent button click failed",
			"code", models.ErrCodeConsentDismiss, "error", err)
		return false
	}
	return true
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
