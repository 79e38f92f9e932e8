// Package report renders extraction byproducts for human inspection: a
// markdown view of the matched section and a readability-based text salvage
// used by the last fallback pass.
package report

import (
	nurl "net/url"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// The converter is goroutine-safe and reusable; built once.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		// Daily menus are frequently rendered as tables; keep their
		// structure instead of flattening rows into paragraphs.
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// SectionMarkdown converts the matched section's outer HTML to markdown.
// The source URL's host resolves relative links so the artifact is
// self-contained.
func SectionMarkdown(sectionHTML, sourceURL string) (string, error) {
	domain := ""
	if u, err := nurl.Parse(sourceURL); err == nil {
		domain = u.Scheme + "://" + u.Host
	}
	return mdConverter.ConvertString(sectionHTML, converter.WithDomain(domain))
}
