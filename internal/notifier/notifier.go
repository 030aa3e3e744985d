package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

// Notifier defines the interface for posting quest reminders
type Notifier interface {
	// Notify posts a single reminder message
	Notify(ctx context.Context, text string) error
}

// FormatReminder renders the reminder text for a quest, e.g.
// "IN 14 MINUTES: Boss Fight: https://pso2.com/news/..."
func FormatReminder(q quest.Quest, now time.Time) string {
	minutes := int64(q.Until(now) / time.Minute)
	return fmt.Sprintf("IN %d MINUTES: %s", minutes, q.Name)
}
