package classify

import (
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
)

// candidateSelectors is the fixed tag-type search order. The first element
// (in document order, per tag type in this order) whose text passes
// MatchesSection wins; there is no scoring of multiple plausible matches.
var candidateSelectors = []string{
	"section",
	"div",
	"article",
	"main",
	"[role=region]",
}

// headingSelector finds the section's own heading for category derivation.
const headingSelector = "h1, h2, h3, h4"

// itemSelector finds list-type children of a matched section.
const itemSelector = "li, tr, p"

// Match is a candidate section judged to be today's menu at the current
// scroll position. It is recomputed every viewport step because visibility
// and lazy-rendered children change with scroll.
type Match struct {
	// Text is the section's full rendered text.
	Text string

	// Heading is the section's own heading text, possibly empty.
	Heading string

	// HTML is the section's outer HTML, used for the markdown artifact.
	HTML string

	// ChildTexts are the rendered texts of the section's visible list-type
	// children, in document order.
	ChildTexts []string

	// Visible reports whether the section's bounding-box top falls within
	// the viewport. Used only to decide whether this step is worth
	// remembering as the best viewport, never to skip parsing.
	Visible bool
}

// ChildCount returns the number of visible list-type children.
func (m *Match) ChildCount() int { return len(m.ChildTexts) }

// Locate walks the candidate tag types in order and returns the first
// section whose text passes the daily-menu classifier, or nil when no
// section matches this step (an expected outcome, not an error).
func Locate(page *rod.Page, viewportHeight float64) *Match {
	for _, sel := range candidateSelectors {
		els, err := page.Elements(sel)
		if err != nil {
			slog.Debug("classifier: candidate query failed", "selector", sel, "error", err)
			continue
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil || !MatchesSection(text) {
				continue
			}
			return buildMatch(el, text, viewportHeight)
		}
	}
	return nil
}

// buildMatch collects heading, children and geometry for a matched element.
// Every read is best-effort: a partially populated match is still usable.
func buildMatch(el *rod.Element, text string, viewportHeight float64) *Match {
	m := &Match{Text: text}

	if h, err := el.Element(headingSelector); err == nil {
		if ht, err := h.Text(); err == nil {
			m.Heading = ht
		}
	}

	if html, err := el.HTML(); err == nil {
		m.HTML = html
	}

	if kids, err := el.Elements(itemSelector); err == nil {
		for _, kid := range kids {
			visible, err := kid.Visible()
			if err != nil || !visible {
				continue
			}
			kt, err := kid.Text()
			if err != nil {
				continue
			}
			if kt = strings.TrimSpace(kt); kt != "" {
				m.ChildTexts = append(m.ChildTexts, kt)
			}
		}
	}
	// Sections that render rows as bare divs have no li/tr/p children;
	// fall back to direct div children.
	if len(m.ChildTexts) == 0 {
		if kids, err := el.Elements(":scope > div"); err == nil {
			for _, kid := range kids {
				if kt, err := kid.Text(); err == nil {
					if kt = strings.TrimSpace(kt); kt != "" {
						m.ChildTexts = append(m.ChildTexts, kt)
					}
				}
			}
		}
	}

	if shape, err := el.Shape(); err == nil {
		if box := shape.Box(); box != nil {
			m.Visible = box.Y >= 0 && box.Y <= viewportHeight
		}
	}

	return m
}
