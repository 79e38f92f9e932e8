// Package classify locates the DOM section that carries today's menu,
// rejecting visually similar decoys such as favorites lists and permanent
// menus. The text predicates are pure functions of lower-cased section text,
// so classification of an unchanged DOM is idempotent.
package classify

import (
	"regexp"
	"strings"
)

// dailyMenuPhrases mark day-specific menu content (Slovak and English).
var dailyMenuPhrases = []string{
	"denné menu",
	"denne menu",
	"obedové menu",
	"obedove menu",
	"menu dňa",
	"daily menu",
	"lunch menu",
	"today's menu",
}

// exclusionPhrases denote non-daily content. Exclusion always takes
// precedence over inclusion.
var exclusionPhrases = []string{
	"obľúbené",
	"oblubene",
	"najpredávanejšie",
	"stále menu",
	"stála ponuka",
	"stala ponuka",
	"celoročná ponuka",
	"favorites",
	"favourites",
	"most popular",
	"popular dishes",
	"permanent menu",
	"à la carte",
	"a la carte",
}

// weekdays in both supported languages, diacritics-stripped variants included
// because rendered pages are inconsistent about them.
var weekdays = []string{
	"pondelok", "utorok", "streda", "štvrtok", "stvrtok", "piatok", "sobota", "nedeľa", "nedela",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// itemCountRe matches phrases like "5 jedál" or "4 items" that accompany a
// generic daily-menu heading when no weekday is printed.
var itemCountRe = regexp.MustCompile(`\d+\s*(jedál|jedla|jedlá|položiek|poloziek|items?|dishes)`)

// headingCategoryRe extracts the category label from a section heading,
// e.g. "Denné menu Pondelok" or "Daily menu Monday".
var headingCategoryRe = regexp.MustCompile(`(?i)\b(denné menu|denne menu|obedové menu|obedove menu|menu dňa|daily menu|lunch menu)(\s+[\p{L}0-9.]+)?`)

// Excluded reports whether the section text names non-daily content.
func Excluded(text string) bool {
	return containsAny(strings.ToLower(text), exclusionPhrases)
}

// IncludesDailyMenu reports whether the text matches the daily-menu pattern:
// a daily-menu phrase plus a weekday name, or a daily-menu phrase plus an
// item-count phrase.
func IncludesDailyMenu(text string) bool {
	lower := strings.ToLower(text)
	if !containsAny(lower, dailyMenuPhrases) {
		return false
	}
	return containsAny(lower, weekdays) || itemCountRe.MatchString(lower)
}

// MatchesSection applies exclusion before inclusion: a section containing
// both an exclusion phrase and an inclusion pattern is rejected.
func MatchesSection(text string) bool {
	if Excluded(text) {
		return false
	}
	return IncludesDailyMenu(text)
}

// Category derives the item category from a section heading via the
// daily-menu phrase pattern, defaulting to a generic label when unmatched.
func Category(heading string) string {
	m := headingCategoryRe.FindString(strings.Join(strings.Fields(heading), " "))
	if m == "" {
		return "Daily menu"
	}
	return strings.TrimSpace(m)
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
