package store

import (
	"sync"

	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

// Store guards the pending quest list with a single mutex
type Store struct {
	mu      sync.Mutex
	pending Pending
}

// New creates an empty Store
func New() *Store {
	return &Store{}
}

// Replace discards the current contents and installs quests.
// The slice is copied and sorted furthest-future first regardless
// of the caller's ordering.
func (s *Store) Replace(quests []quest.Quest) {
	next := make([]quest.Quest, len(quests))
	copy(next, quests)
	if !quest.IsDescending(next) {
		quest.SortDescending(next)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending.quests = next
}

// WithExclusiveAccess runs fn while holding the store lock. fn may inspect and
// pop entries; the Pending handle must not be retained after fn returns.
func (s *Store) WithExclusiveAccess(fn func(p *Pending)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.pending)
}

// Snapshot returns a copy of the pending list in its stored order
func (s *Store) Snapshot() []quest.Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]quest.Quest, len(s.pending.quests))
	copy(out, s.pending.quests)
	return out
}

// Len returns the number of pending quests
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// Pending is the quest list as seen inside an exclusive access session
type Pending struct {
	quests []quest.Quest
}

// Len returns the number of pending quests
func (p *Pending) Len() int {
	return len(p.quests)
}

// Last returns the soonest-upcoming quest without removing it
func (p *Pending) Last() (quest.Quest, bool) {
	if len(p.quests) == 0 {
		return quest.Quest{}, false
	}
	return p.quests[len(p.quests)-1], true
}

// Pop removes and returns the soonest-upcoming quest
func (p *Pending) Pop() (quest.Quest, bool) {
	q, ok := p.Last()
	if !ok {
		return quest.Quest{}, false
	}
	p.quests = p.quests[:len(p.quests)-1]
	return q, true
}
