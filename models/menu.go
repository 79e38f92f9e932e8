package models

import "time"

// PriceUnknown is recorded when an item carries no parseable price.
const PriceUnknown = "N/A"

// MenuItem is one parsed dish from a daily-menu section.
//
// Invariants, enforced by the parser: Name is never empty, is longer than
// three characters and never contains the currency symbol; Price is either
// PriceUnknown or matches `(od )?\d+,\d{2} €`.
type MenuItem struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Description string `json:"description"`

	// SourceStep is the 1-based viewport step the item was parsed at.
	// 0 marks items recovered by a fallback pass.
	SourceStep int `json:"source_step"`
}

// Key is the identity used to deduplicate items parsed from overlapping
// viewport steps.
func (m MenuItem) Key() string {
	return m.Name + "|" + m.Price + "|" + m.Category
}

// SiteResult is the outcome of one site visit. It is created once per run,
// immutable after creation, and is the only thing the runner ever surfaces:
// failures travel as data, never as errors past the runner boundary.
type SiteResult struct {
	Site            string     `json:"site"`
	URL             string     `json:"url"`
	Success         bool       `json:"success"`
	Items           []MenuItem `json:"items"`
	ScreenshotPaths []string   `json:"screenshot_paths,omitempty"`

	// SectionMarkdown is a human-inspectable markdown rendering of the
	// matched section, when one was found.
	SectionMarkdown string `json:"section_markdown,omitempty"`

	// ProbeVerdict summarises the pre-flight HTTP probe ("ok", "challenge",
	// "spa-shell", "unreachable"). Advisory only.
	ProbeVerdict string `json:"probe_verdict,omitempty"`

	Error     string    `json:"error,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}
