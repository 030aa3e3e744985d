package quest

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Quest represents a single scheduled urgent quest occurrence
type Quest struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"` // always UTC
	Name      string    `json:"name"`       // "<label>: <source url>"
}

// GenerateID creates a deterministic ID from the start instant and name
func GenerateID(start time.Time, name string) string {
	h := sha1.New()
	h.Write([]byte(start.UTC().Format(time.RFC3339) + "|" + name))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// New creates a Quest with its start time normalized to UTC and its ID populated
func New(start time.Time, name string) Quest {
	start = start.UTC()
	return Quest{
		ID:        GenerateID(start, name),
		StartTime: start,
		Name:      name,
	}
}

// Until returns the time remaining from now until the quest starts.
// The result is negative once the quest has started.
func (q Quest) Until(now time.Time) time.Duration {
	return q.StartTime.Sub(now)
}

// Label returns the quest name without its source reference
func (q Quest) Label() string {
	label, _ := q.split()
	return label
}

// Source returns the page the quest was announced on, if known
func (q Quest) Source() string {
	_, source := q.split()
	return source
}

func (q Quest) split() (label, source string) {
	i := strings.LastIndex(q.Name, ": ")
	if i < 0 || !strings.HasPrefix(q.Name[i+2:], "http") {
		return q.Name, ""
	}
	return q.Name[:i], q.Name[i+2:]
}

// SortDescending orders quests furthest-future first, soonest last.
// Quests with equal start times keep their relative order.
func SortDescending(quests []Quest) {
	sort.SliceStable(quests, func(i, j int) bool {
		return quests[i].StartTime.After(quests[j].StartTime)
	})
}

// IsDescending reports whether every adjacent pair (a, b) has a.StartTime >= b.StartTime
func IsDescending(quests []Quest) bool {
	for i := 1; i < len(quests); i++ {
		if quests[i].StartTime.After(quests[i-1].StartTime) {
			return false
		}
	}
	return true
}
