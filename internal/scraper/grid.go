package scraper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/pso2-quests/internal/logger"
	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

const (
	cellSelector = "td, th"
	maxColspan   = 1000
)

// YearPolicy decides which year a "month/day" header belongs to, since the
// calendar omits it.
type YearPolicy string

const (
	// YearCurrent always uses the anchor's year. Calendars published in
	// December for January dates get the wrong year.
	YearCurrent YearPolicy = "current"
	// YearRollover moves dates more than six months before the anchor into
	// the following year.
	YearRollover YearPolicy = "rollover"
)

// ParseYearPolicy converts a config value into a YearPolicy
func ParseYearPolicy(s string) (YearPolicy, error) {
	switch YearPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", YearCurrent:
		return YearCurrent, nil
	case YearRollover:
		return YearRollover, nil
	default:
		return "", fmt.Errorf("unknown year policy: %q (must be 'current' or 'rollover')", s)
	}
}

// DecodeOptions carries the context needed to turn grid positions into instants
type DecodeOptions struct {
	Anchor     time.Time      // supplies the year for header dates
	Location   *time.Location // timezone the calendar is published in
	YearPolicy YearPolicy
}

// cellResult records why a grid cell did or did not produce a quest
type cellResult int

const (
	cellOK cellResult = iota
	cellNoColor
	cellUnmappedColor
	cellNoColumnDate
	cellBadLocalTime
)

func (r cellResult) String() string {
	switch r {
	case cellOK:
		return "ok"
	case cellNoColor:
		return "no_color"
	case cellUnmappedColor:
		return "unmapped_color"
	case cellNoColumnDate:
		return "no_column_date"
	case cellBadLocalTime:
		return "bad_local_time"
	default:
		return "unknown"
	}
}

// clock is a time of day read from a grid row label
type clock struct {
	hour, minute int
}

// DecodeGrid resolves every colored cell of a grid table body into a quest.
// Cells that fail any lookup are dropped without affecting the others.
func DecodeGrid(tbody *goquery.Selection, legend map[string]string, opts DecodeOptions) []quest.Quest {
	quests, stats := decodeGrid(tbody, legend, opts)
	if len(stats) > 0 {
		fields := logger.Fields{"quests": len(quests)}
		for r, n := range stats {
			fields[r.String()] = n
		}
		logger.Debug("Decoded grid", fields)
	}
	return quests
}

func decodeGrid(tbody *goquery.Selection, legend map[string]string, opts DecodeOptions) ([]quest.Quest, map[cellResult]int) {
	quests := make([]quest.Quest, 0)
	stats := make(map[cellResult]int)

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	rows := tbody.ChildrenFiltered("tr")
	if rows.Length() == 0 {
		return quests, stats
	}

	dates := columnDates(rows.First(), opts.Anchor.In(loc), opts.YearPolicy)

	skipFirst(rows).Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered(cellSelector)
		at, ok := parseClock(cells.First().Text())
		if !ok {
			return
		}

		skipFirst(cells).Each(func(col int, cell *goquery.Selection) {
			q, result := decodeCell(cell, col, at, legend, dates, loc)
			if result == cellOK {
				quests = append(quests, q)
			}
			stats[result]++
		})
	})

	return quests, stats
}

// columnDates reads the header row into one date per underlying grid column.
// A header cell spanning N columns contributes N copies of its date so data
// cells further right stay aligned.
func columnDates(header *goquery.Selection, anchor time.Time, policy YearPolicy) []time.Time {
	dates := make([]time.Time, 0)

	skipFirst(header.ChildrenFiltered(cellSelector)).Each(func(_ int, cell *goquery.Selection) {
		date, ok := parseColumnDate(cellText(cell), anchor, policy)
		if !ok {
			return
		}
		for n := colspan(cell); n > 0; n-- {
			dates = append(dates, date)
		}
	})

	return dates
}

// parseColumnDate parses "month/day" against the anchor's year
func parseColumnDate(text string, anchor time.Time, policy YearPolicy) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	date, err := time.Parse("2006/1/2", fmt.Sprintf("%d/%s", anchor.Year(), text))
	if err != nil {
		return time.Time{}, false
	}

	if policy == YearRollover {
		floor := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, -6, 0)
		if date.Before(floor) {
			date = date.AddDate(1, 0, 0)
		}
	}
	return date, true
}

// skipFirst drops the leading label cell or header row
func skipFirst(sel *goquery.Selection) *goquery.Selection {
	if sel.Length() == 0 {
		return sel
	}
	return sel.Slice(1, goquery.ToEnd)
}

func colspan(cell *goquery.Selection) int {
	raw, ok := cell.Attr("colspan")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxColspan {
		return maxColspan
	}
	return n
}

// parseClock parses a 12-hour "h:mm AM" row label
func parseClock(text string) (clock, bool) {
	text = strings.ToUpper(strings.Join(strings.Fields(text), " "))
	for _, layout := range []string{"3:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, text); err == nil {
			return clock{hour: t.Hour(), minute: t.Minute()}, true
		}
	}
	return clock{}, false
}

// decodeCell resolves one grid cell at data column col
func decodeCell(cell *goquery.Selection, col int, at clock, legend map[string]string, dates []time.Time, loc *time.Location) (quest.Quest, cellResult) {
	style, ok := cell.Attr("style")
	if !ok {
		return quest.Quest{}, cellNoColor
	}
	color, ok := backgroundColor(style)
	if !ok {
		return quest.Quest{}, cellNoColor
	}

	label, ok := legend[color]
	if !ok {
		return quest.Quest{}, cellUnmappedColor
	}

	if col >= len(dates) {
		return quest.Quest{}, cellNoColumnDate
	}

	start, res := resolveLocal(dates[col], at.hour, at.minute, loc)
	if res != resolvedSingle {
		return quest.Quest{}, cellBadLocalTime
	}

	return quest.New(start, label), cellOK
}
