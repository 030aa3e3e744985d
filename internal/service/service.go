package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/pfrederiksen/pso2-quests/internal/logger"
	"github.com/pfrederiksen/pso2-quests/internal/quest"
	"github.com/pfrederiksen/pso2-quests/internal/reminder"
	"github.com/pfrederiksen/pso2-quests/internal/store"
	"github.com/robfig/cron/v3"
)

// Fetcher produces the full list of upcoming quests for one scrape cycle
type Fetcher interface {
	FetchQuests(ctx context.Context) []quest.Quest
}

// Service owns the quest store and the two workers that share it
type Service struct {
	fetcher   Fetcher
	store     *store.Store
	scheduler *reminder.Scheduler

	scrapeSchedule cron.Schedule
	checkSchedule  cron.Schedule

	now func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the clock used for reminder checks and schedules
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. The scheduler must be backed by st.
func New(f Fetcher, st *store.Store, sched *reminder.Scheduler, scrape, check cron.Schedule, opts ...Option) *Service {
	s := &Service{
		fetcher:        f,
		store:          st,
		scheduler:      sched,
		scrapeSchedule: scrape,
		checkSchedule:  check,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts both workers and blocks until ctx is cancelled and both have returned
func (s *Service) Run(ctx context.Context) error {
	logger.Info("Starting service", logger.Fields{
		"reminder_window": s.scheduler.Window().String(),
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go s.worker(ctx, &wg, "scraper", s.scrapeSchedule, func(ctx context.Context) { s.ScrapeOnce(ctx) })
	go s.worker(ctx, &wg, "reminder", s.checkSchedule, func(ctx context.Context) { s.CheckOnce(ctx) })
	wg.Wait()

	logger.Info("Service stopped", nil)
	return nil
}

// ScrapeOnce fetches the current quest list and replaces the store contents.
// It returns the number of quests installed.
func (s *Service) ScrapeOnce(ctx context.Context) int {
	start := time.Now()
	quests := s.fetcher.FetchQuests(ctx)
	if ctx.Err() != nil {
		return 0
	}
	s.store.Replace(quests)

	logger.IncrCounter("scrape.runs")
	logger.SetGauge("scrape.quests", float64(len(quests)))
	logger.Info("Replaced pending quests", logger.Fields{
		"quests":   len(quests),
		"duration": time.Since(start).String(),
	})
	return len(quests)
}

// CheckOnce runs one reminder pass at the current time
func (s *Service) CheckOnce(ctx context.Context) reminder.Result {
	res := s.scheduler.Check(ctx, s.now())
	if res.Expired > 0 || res.Notified > 0 || res.Failed > 0 {
		logger.Info("Reminder check complete", logger.Fields{
			"expired":  res.Expired,
			"notified": res.Notified,
			"failed":   res.Failed,
			"pending":  s.store.Len(),
		})
	}
	return res
}

// Store returns the pending quest store
func (s *Service) Store() *store.Store {
	return s.store
}

// worker runs fn immediately and then at every activation of sched until ctx is done
func (s *Service) worker(ctx context.Context, wg *sync.WaitGroup, name string, sched cron.Schedule, fn func(context.Context)) {
	defer wg.Done()
	logger.Debug("Worker started", logger.Fields{"worker": name})

	for {
		s.runSafely(ctx, name, fn)

		next := sched.Next(s.now())
		if err := waitUntil(ctx, next, s.now); err != nil {
			logger.Debug("Worker stopped", logger.Fields{"worker": name})
			return
		}
	}
}

// runSafely keeps a panicking run from taking the worker down with it
func (s *Service) runSafely(ctx context.Context, name string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.IncrCounter("worker.panics")
			logger.Error("Worker run panicked", logger.Fields{
				"worker": name,
				"stack":  string(debug.Stack()),
			}, fmt.Errorf("panic: %v", r))
		}
	}()
	fn(ctx)
}

// waitUntil blocks until next or until ctx is done, whichever comes first
func waitUntil(ctx context.Context, next time.Time, now func() time.Time) error {
	// A zero time means the schedule never fires again
	if next.IsZero() {
		<-ctx.Done()
		return ctx.Err()
	}

	d := next.Sub(now())
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
