package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/calendar"
	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// textTimeLayout shows quest start times in the source timezone
const textTimeLayout = "Mon Jan 2 15:04 MST"

// OutputResult contains data to be output
type OutputResult struct {
	FetchedAt  time.Time     `json:"fetched_at"`
	Source     string        `json:"source"`
	Quests     []quest.Quest `json:"quests"`
	QuestCount int           `json:"quest_count"`
}

// WriteOutput writes the result in the specified format.
// loc is the timezone start times are shown in for text output.
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, loc *time.Location, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, loc, verbose)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.Quests, result.FetchedAt))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	if result.Quests == nil {
		result.Quests = []quest.Quest{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, loc *time.Location, verbose bool) error {
	if loc == nil {
		loc = time.UTC
	}

	if result.QuestCount == 0 {
		fmt.Fprintln(w, "No urgent quests found.")
		return nil
	}

	for _, q := range result.Quests {
		fmt.Fprintf(w, "%s  %s\n", q.StartTime.In(loc).Format(textTimeLayout), q.Label())
		if verbose {
			fmt.Fprintf(w, "     ID: %s\n", q.ID)
			fmt.Fprintf(w, "     UTC: %s\n", q.StartTime.UTC().Format(time.RFC3339))
			if source := q.Source(); source != "" {
				fmt.Fprintf(w, "     Source: %s\n", source)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d quests\n", result.QuestCount)

	return nil
}
