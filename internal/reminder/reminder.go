package reminder

import (
	"context"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/logger"
	"github.com/pfrederiksen/pso2-quests/internal/notifier"
	"github.com/pfrederiksen/pso2-quests/internal/quest"
	"github.com/pfrederiksen/pso2-quests/internal/store"
)

// DefaultWindow is how long before a quest starts the reminder is sent
const DefaultWindow = 15 * time.Minute

// State is the classification of a pending quest relative to now
type State int

const (
	// Past quests have already started and are dropped without notice
	Past State = iota
	// Near quests start inside the reminder window
	Near
	// Far quests start later than the window; scanning stops here
	Far
)

func (s State) String() string {
	switch s {
	case Past:
		return "past"
	case Near:
		return "near"
	case Far:
		return "far"
	default:
		return "unknown"
	}
}

// Classify places a quest starting at start relative to now
func Classify(now, start time.Time, window time.Duration) State {
	if now.Sub(start) >= 0 {
		return Past
	}
	if start.Sub(now) < window {
		return Near
	}
	return Far
}

// Result summarizes one check
type Result struct {
	Expired  int
	Notified int
	Failed   int
}

// Scheduler pops due quests from a store and sends their reminders
type Scheduler struct {
	store    *store.Store
	notifier notifier.Notifier
	window   time.Duration
}

// New creates a Scheduler. A non-positive window uses DefaultWindow.
func New(s *store.Store, n notifier.Notifier, window time.Duration) *Scheduler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Scheduler{store: s, notifier: n, window: window}
}

// Window returns the configured reminder lead time
func (s *Scheduler) Window() time.Duration {
	return s.window
}

// Check runs one classify/pop pass at now.
// The whole pass holds the store lock; reminders are dispatched after it is
// released. A popped quest is never returned to the store, so a failed send is
// not retried.
func (s *Scheduler) Check(ctx context.Context, now time.Time) Result {
	var (
		res Result
		due []quest.Quest
	)

	s.store.WithExclusiveAccess(func(p *store.Pending) {
		for {
			q, ok := p.Last()
			if !ok {
				return
			}

			switch Classify(now, q.StartTime, s.window) {
			case Past:
				p.Pop()
				res.Expired++
				logger.Debug("Dropping quest that already started", logger.Fields{
					"quest_id": q.ID,
					"name":     q.Name,
					"start":    q.StartTime,
				})
			case Near:
				p.Pop()
				due = append(due, q)
			case Far:
				return
			}
		}
	})

	for _, q := range due {
		msg := notifier.FormatReminder(q, now)
		if err := s.notifier.Notify(ctx, msg); err != nil {
			res.Failed++
			logger.IncrCounter("notify.errors")
			logger.Error("Failed to send reminder", logger.Fields{
				"quest_id": q.ID,
				"name":     q.Name,
			}, err)
			continue
		}
		res.Notified++
		logger.Info("Sent reminder", logger.Fields{
			"quest_id": q.ID,
			"name":     q.Name,
			"start":    q.StartTime,
		})
	}

	logger.AddCounter("reminder.expired", int64(res.Expired))
	logger.AddCounter("reminder.notified", int64(res.Notified))
	return res
}
