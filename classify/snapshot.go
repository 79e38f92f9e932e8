package classify

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Compiled once; the snapshot pass walks the same tag-type order as the live
// locator so both classifiers agree on first-match semantics.
var snapshotSelectors = func() []cascadia.Selector {
	sels := make([]cascadia.Selector, 0, len(candidateSelectors))
	for _, s := range candidateSelectors {
		sels = append(sels, cascadia.MustCompile(s))
	}
	return sels
}()

var (
	snapshotHeading = cascadia.MustCompile(headingSelector)
	snapshotItems   = cascadia.MustCompile(itemSelector)
	snapshotDivs    = cascadia.MustCompile("div")
)

// FromHTML runs the section classifier against a static HTML snapshot.
// It backs the fallback cascade, where no live DOM (and no geometry) is
// available: Visible is always false on the returned match.
//
// The classifier is a pure function of the document text, so repeated calls
// on the same snapshot return the same section.
func FromHTML(rawHTML string) (*Match, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, false
	}

	for _, sel := range snapshotSelectors {
		var found *Match
		doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			if !MatchesSection(text) {
				return true
			}
			found = snapshotMatch(s, text)
			return false
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

func snapshotMatch(s *goquery.Selection, text string) *Match {
	m := &Match{Text: text}

	m.Heading = strings.TrimSpace(s.FindMatcher(snapshotHeading).First().Text())

	if html, err := goquery.OuterHtml(s); err == nil {
		m.HTML = html
	}

	collect := func(sel *goquery.Selection) {
		sel.Each(func(_ int, kid *goquery.Selection) {
			if kt := strings.TrimSpace(kid.Text()); kt != "" {
				m.ChildTexts = append(m.ChildTexts, kt)
			}
		})
	}
	collect(s.FindMatcher(snapshotItems))
	if len(m.ChildTexts) == 0 {
		collect(s.ChildrenMatcher(snapshotDivs))
	}

	return m
}
