package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByTime SortOrder = "time"
	SortByName SortOrder = "name"
	// SortStored keeps the store order, furthest quest first
	SortStored SortOrder = "stored"
)

// sortQuests sorts quests in place based on the specified sort order
func sortQuests(quests []quest.Quest, sortOrder SortOrder) {
	switch sortOrder {
	case SortByTime:
		sort.SliceStable(quests, func(i, j int) bool {
			return quests[i].StartTime.Before(quests[j].StartTime)
		})
	case SortByName:
		sort.SliceStable(quests, func(i, j int) bool {
			a, b := strings.ToLower(quests[i].Label()), strings.ToLower(quests[j].Label())
			if a != b {
				return a < b
			}
			// If names are equal, sort by time
			return quests[i].StartTime.Before(quests[j].StartTime)
		})
	case SortStored:
		quest.SortDescending(quests)
	}
}
