package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/pso2-quests/internal/logger"
)

// DecodeLegend builds the color → quest label map from a legend table body.
// Each row holds a colored swatch cell followed by a label cell. The label is
// suffixed with the page's source reference so reminders can link back to the
// announcement. Rows whose swatch color cannot be determined are skipped.
func DecodeLegend(tbody *goquery.Selection, source string) map[string]string {
	legend := make(map[string]string)

	tbody.ChildrenFiltered("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.ChildrenFiltered(cellSelector)
		if cells.Length() < 2 {
			logger.Debug("Legend row has fewer than two cells", logger.Fields{"row": i})
			return
		}

		style, ok := cells.Eq(0).Attr("style")
		if !ok {
			logger.Warn("Unable to find style attribute on legend swatch", logger.Fields{"row": i, "source": source})
			return
		}
		color, ok := backgroundColor(style)
		if !ok {
			logger.Warn("Legend swatch has no background color", logger.Fields{"row": i, "style": style})
			return
		}

		legend[color] = questLabel(cellText(cells.Eq(1)), source)
	})

	return legend
}

// questLabel combines a quest name with the page it was announced on
func questLabel(name, source string) string {
	if source == "" {
		return name
	}
	return name + ": " + source
}

// cellText returns the cell's text with runs of whitespace collapsed
func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}
