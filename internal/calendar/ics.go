package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

const (
	productID = "-//PSO2 Quests//pso2-quests//EN"
	uidDomain = "pso2-quests"

	// DefaultDuration is used for the event end since the calendar only lists start times
	DefaultDuration = 30 * time.Minute
)

// GenerateICS renders quests as a single iCalendar document.
// stamp is written as DTSTAMP on every event.
func GenerateICS(quests []quest.Quest, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, q := range quests {
		addQuest(cal, q, stamp)
	}

	return cal.Serialize()
}

func addQuest(cal *ics.Calendar, q quest.Quest, stamp time.Time) {
	event := cal.AddEvent(q.ID + "@" + uidDomain)
	event.SetDtStampTime(stamp.UTC())
	event.SetStartAt(q.StartTime.UTC())
	event.SetEndAt(q.StartTime.UTC().Add(DefaultDuration))
	event.SetSummary("PSO2 Urgent Quest - " + q.Label())
	event.SetDescription(q.Name)
	if source := q.Source(); source != "" {
		event.SetURL(source)
	}
}
