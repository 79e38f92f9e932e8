package report

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minSalvageLength guards against readability "succeeding" on an empty
// shell; below this the salvage yields nothing.
const minSalvageLength = 50

// SalvageLines runs the Mozilla Readability algorithm over the full page
// HTML and returns the text lines that look like they could carry a priced
// item. It is the last extraction attempt before the pipeline reports
// "no menu available"; returning nil is a normal outcome.
func SalvageLines(rawHTML, sourceURL string) []string {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("salvage: invalid source URL", "url", sourceURL, "error", err)
		return nil
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("salvage: readability failed", "url", sourceURL, "error", err)
		return nil
	}
	if len(strings.TrimSpace(article.TextContent)) < minSalvageLength {
		return nil
	}

	return PricedLines(article.TextContent)
}

// PricedLines filters text down to non-empty lines containing the currency
// marker, the only lines the item parser could possibly accept.
func PricedLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(line, "€") {
			lines = append(lines, line)
		}
	}
	return lines
}
