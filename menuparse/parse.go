// Package menuparse turns noisy rendered text from a matched menu section
// into typed menu items. Everything here is pure string work so it can be
// tested without a browser.
package menuparse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/menuhound/menuhound/models"
)

// DefaultCategory is used when the section heading carries no recognizable
// daily-menu phrase.
const DefaultCategory = "Daily menu"

// DefaultDescription is recorded when nothing useful remains after the price.
const DefaultDescription = "Daily menu item"

// minItemTextLen filters out structural noise: list children shorter than
// this cannot carry a dish name plus a price.
const minItemTextLen = 10

var (
	// moneyRe locates the two-decimal money pattern that splits a raw line
	// into name and description.
	moneyRe = regexp.MustCompile(`\d+,\d{2}\s*€`)

	// priceRe re-scans for the price itself, with the optional "od"
	// ("starting from") qualifier.
	priceRe = regexp.MustCompile(`(?:\b(od)\s+)?(\d+,\d{2})\s*€`)

	// prefixRe strips boilerplate item prefixes such as "Polievka 1:",
	// "Soup 2:" or "Menu 3.".
	prefixRe = regexp.MustCompile(`(?i)^(?:polievka|polievky|soup|menu|obed)\s*(?:č\.)?\s*\d*\s*[:.\-]?\s*`)

	// weightRe and volumeRe drop portion annotations from descriptions.
	weightRe = regexp.MustCompile(`(?i)\(?\d+(?:[.,]\d+)?\s*g\)?`)
	volumeRe = regexp.MustCompile(`(?i)\(?\d+(?:[.,]\d+)?\s*(?:ml|dcl|cl|l)\)?`)
)

// trailingConnectors are sentence-fragment leftovers trimmed from the end of
// a name after the price split ("Schnitzel od" → "Schnitzel").
var trailingConnectors = []string{"od", "s", "so", "with", "a", "za", "from", "iba", "len"}

// noisePhrases mark list children that are page chrome rather than dishes.
var noisePhrases = []string{
	"otváracie hodiny",
	"opening hours",
	"kontakt",
	"contact",
	"rezervácia",
	"reservation",
	"navigácia",
	"navigation",
	"hlavná stránka",
	"cookies",
	"jedálny lístok na stiahnutie",
	"dovoz jedál",
	"all rights reserved",
}

// ParseSection parses every visible child text of a matched section.
// Children that fail validation are silently dropped; a rejected candidate
// is expected, not an error.
func ParseSection(childTexts []string, category string, sourceStep int) []models.MenuItem {
	var items []models.MenuItem
	for _, raw := range childTexts {
		if item, ok := ParseItem(raw, category, sourceStep); ok {
			items = append(items, item)
		}
	}
	return items
}

// ParseItem decomposes one raw rendered line into a menu item.
//
// The first two-decimal money match splits the line: everything before it is
// the name (boilerplate prefixes and trailing connectors stripped), everything
// after it is the description (secondary prices and portion annotations
// stripped). The candidate is rejected when the cleaned name is three
// characters or shorter, or still contains the currency symbol.
func ParseItem(raw, category string, sourceStep int) (models.MenuItem, bool) {
	text := normalizeSpace(raw)
	if utf8.RuneCountInString(text) < minItemTextLen {
		return models.MenuItem{}, false
	}

	lower := strings.ToLower(text)
	for _, phrase := range noisePhrases {
		if strings.Contains(lower, phrase) {
			return models.MenuItem{}, false
		}
	}

	loc := moneyRe.FindStringIndex(text)
	if loc == nil {
		// No price marker means structural noise, not a menu item.
		return models.MenuItem{}, false
	}

	name := cleanName(text[:loc[0]])
	if utf8.RuneCountInString(name) <= 3 || strings.Contains(name, "€") {
		return models.MenuItem{}, false
	}

	if category == "" {
		category = DefaultCategory
	}

	return models.MenuItem{
		Name:        name,
		Price:       extractPrice(text),
		Category:    category,
		Description: cleanDescription(text[loc[1]:]),
		SourceStep:  sourceStep,
	}, true
}

// extractPrice returns the first price in the text, qualifier-prefixed when
// the "starting from" word precedes it, or PriceUnknown when no money
// pattern is present.
func extractPrice(text string) string {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return models.PriceUnknown
	}
	if m[1] != "" {
		return "od " + m[2] + " €"
	}
	return m[2] + " €"
}

// cleanName strips boilerplate prefixes and trailing connector words left
// over from the sentence fragment before the price.
func cleanName(raw string) string {
	name := normalizeSpace(raw)
	name = prefixRe.ReplaceAllString(name, "")
	name = strings.Trim(name, " ,.:;-–")

	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(name)
		for _, conn := range trailingConnectors {
			if strings.HasSuffix(lower, " "+conn) {
				name = strings.TrimSpace(name[:len(name)-len(conn)-1])
				name = strings.Trim(name, " ,.:;-–")
				changed = true
				break
			}
		}
	}
	return name
}

// cleanDescription drops trailing secondary prices and weight/volume
// annotations from the text after the first price match.
func cleanDescription(raw string) string {
	desc := priceRe.ReplaceAllString(raw, "")
	desc = weightRe.ReplaceAllString(desc, "")
	desc = volumeRe.ReplaceAllString(desc, "")
	desc = normalizeSpace(desc)
	desc = strings.Trim(desc, " ,.:;-–/()")
	if desc == "" {
		return DefaultDescription
	}
	return desc
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
