package store

import (
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/quest"
)

var base = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

func TestReplace(t *testing.T) {
	s := New()

	s.Replace([]quest.Quest{
		quest.New(base.Add(72*time.Hour), "c"),
		quest.New(base.Add(time.Hour), "b"),
	})
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	// Replacement discards previous contents entirely
	s.Replace([]quest.Quest{quest.New(base, "a")})
	got := s.Snapshot()
	if len(got) != 1 || got[0].Name != "a" {
		t.Errorf("Snapshot() after Replace = %+v, want [a]", got)
	}

	s.Replace(nil)
	if s.Len() != 0 {
		t.Errorf("Len() after Replace(nil) = %d, want 0", s.Len())
	}
}

func TestReplace_SortsAndCopies(t *testing.T) {
	s := New()
	input := []quest.Quest{
		quest.New(base, "a"),
		quest.New(base.Add(72*time.Hour), "c"),
		quest.New(base.Add(time.Hour), "b"),
	}

	s.Replace(input)
	input[0] = quest.New(base, "mutated")

	got := s.Snapshot()
	if !quest.IsDescending(got) {
		t.Errorf("Snapshot() not descending: %+v", got)
	}
	for _, q := range got {
		if q.Name == "mutated" {
			t.Error("Replace() kept a reference to the caller's slice")
		}
	}
	if got[len(got)-1].Name != "a" {
		t.Errorf("last = %s, want a", got[len(got)-1].Name)
	}
}

func TestWithExclusiveAccess_Pop(t *testing.T) {
	s := New()
	s.Replace([]quest.Quest{
		quest.New(base.Add(2*time.Hour), "later"),
		quest.New(base, "soon"),
	})

	var popped []string
	s.WithExclusiveAccess(func(p *Pending) {
		last, ok := p.Last()
		if !ok || last.Name != "soon" {
			t.Errorf("Last() = %+v, %v, want soon", last, ok)
		}
		for p.Len() > 0 {
			q, _ := p.Pop()
			popped = append(popped, q.Name)
		}
		if _, ok := p.Pop(); ok {
			t.Error("Pop() on empty list returned ok")
		}
		if _, ok := p.Last(); ok {
			t.Error("Last() on empty list returned ok")
		}
	})

	if len(popped) != 2 || popped[0] != "soon" || popped[1] != "later" {
		t.Errorf("popped = %v, want [soon later]", popped)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestWithExclusiveAccess_AtMostOnce(t *testing.T) {
	s := New()
	quests := make([]quest.Quest, 200)
	for i := range quests {
		quests[i] = quest.New(base.Add(time.Duration(i)*time.Minute), "q")
	}
	s.Replace(quests)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		seen  = make(map[string]int)
		total int
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				var (
					q  quest.Quest
					ok bool
				)
				s.WithExclusiveAccess(func(p *Pending) {
					q, ok = p.Pop()
				})
				if !ok {
					return
				}
				mu.Lock()
				seen[q.ID]++
				total++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if total != len(quests) {
		t.Errorf("popped %d quests, want %d", total, len(quests))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("quest %s popped %d times", id, n)
		}
	}
}
