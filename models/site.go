package models

import "time"

// Consent step types. These are the only page interactions a site config may
// request; arbitrary scripts are deliberately not supported.
const (
	ConsentStepClick  = "click"
	ConsentStepWait   = "wait"
	ConsentStepScroll = "scroll"
)

// ConsentStep is one declarative consent-handling interaction, executed in
// order after the generic consent dismissal pass.
type ConsentStep struct {
	Type         string `yaml:"type" json:"type"`
	Selector     string `yaml:"selector,omitempty" json:"selector,omitempty"`
	Milliseconds int    `yaml:"milliseconds,omitempty" json:"milliseconds,omitempty"`
	Pixels       int    `yaml:"pixels,omitempty" json:"pixels,omitempty"`
}

// Site describes one restaurant page to extract a daily menu from.
// It is read-only to the pipeline; ownership stays with configuration.
type Site struct {
	// Name identifies the site in results, logs and screenshot filenames.
	Name string `yaml:"name" json:"name"`

	// URL is the page carrying the daily menu.
	URL string `yaml:"url" json:"url"`

	// Enabled sites are visited on batch runs; disabled ones are skipped.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// WaitSelector, when set, is a CSS selector the page must render at
	// least one match for before sampling starts.
	WaitSelector string `yaml:"wait_selector,omitempty" json:"wait_selector,omitempty"`

	// ConsentSteps are site-specific consent interactions, run after the
	// generic dismissal cascade. Failures are logged and swallowed.
	ConsentSteps []ConsentStep `yaml:"consent_steps,omitempty" json:"consent_steps,omitempty"`

	// TimeoutMs bounds the whole visit for this site. 0 means the default.
	TimeoutMs int `yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty"`
}

// defaultSiteTimeout bounds a site visit when the config does not say otherwise.
const defaultSiteTimeout = 45 * time.Second

// Timeout returns the per-site visit deadline.
func (s Site) Timeout() time.Duration {
	if s.TimeoutMs > 0 {
		return time.Duration(s.TimeoutMs) * time.Millisecond
	}
	return defaultSiteTimeout
}
