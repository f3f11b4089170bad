package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/buying-list/internal/metrics"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// ErrInvalidInterval is returned for a non-positive schedule interval.
var ErrInvalidInterval = errors.New("update interval must be positive")

// Updater is the work run on every scheduler tick.
type Updater interface {
	UpdateAllPrices(ctx context.Context) (*domain.BatchSummary, error)
}

// SchedulerStatus describes the scheduler for status endpoints.
type SchedulerStatus struct {
	Running     bool                 `json:"running"`
	Interval    string               `json:"interval"`
	NextRun     *time.Time           `json:"next_run,omitempty"`
	LastRun     *time.Time           `json:"last_run,omitempty"`
	LastSummary *domain.BatchSummary `json:"last_summary,omitempty"`
}

// Scheduler runs periodic price refreshes. A tick that fires while the
// previous scheduled run is still going is skipped, also when the job was
// rescheduled in between.
type Scheduler struct {
	cron    *cron.Cron
	updater Updater
	log     *slog.Logger
	ticking atomic.Bool

	mu          sync.Mutex
	entry       cron.EntryID
	interval    time.Duration
	running     bool
	lastRun     *time.Time
	lastSummary *domain.BatchSummary
}

// NewScheduler creates a new Scheduler that runs updater every interval.
func NewScheduler(updater Updater, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	cronLog := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelDebug))
	c := cron.New(cron.WithChain(cron.Recover(cronLog)))

	s := &Scheduler{
		cron:     c,
		updater:  updater,
		log:      log,
		interval: interval,
	}

	id, err := c.AddFunc(spec(interval), s.runUpdate)
	if err != nil {
		return nil, fmt.Errorf("adding update job: %w", err)
	}
	s.entry = id

	return s, nil
}

func spec(d time.Duration) string {
	return "@every " + d.String()
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.log.Info("scheduler started", "interval", s.Interval())
	s.cron.Start()
	s.recordNextRun()
}

// Stop cancels future ticks. The returned context is done once a run in
// progress has finished.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Reschedule replaces the update job with one at the new interval. A run in
// progress is not interrupted.
func (s *Scheduler) Reschedule(interval time.Duration) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if interval == s.interval {
		return nil
	}

	id, err := s.cron.AddFunc(spec(interval), s.runUpdate)
	if err != nil {
		return fmt.Errorf("adding update job: %w", err)
	}
	s.cron.Remove(s.entry)
	s.entry = id
	s.interval = interval

	s.log.Info("scheduler rescheduled", "interval", interval)
	s.recordNextRunLocked()
	return nil
}

// Interval returns the current tick interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// Status reports the scheduler state.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SchedulerStatus{
		Running:     s.running,
		Interval:    s.interval.String(),
		LastRun:     s.lastRun,
		LastSummary: s.lastSummary,
	}
	if next := s.cron.Entry(s.entry).Next; s.running && !next.IsZero() {
		st.NextRun = &next
	}
	return st
}

// RunNow triggers an immediate refresh outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (*domain.BatchSummary, error) {
	return s.run(ctx)
}

func (s *Scheduler) runUpdate() {
	if !s.ticking.CompareAndSwap(false, true) {
		s.log.Warn("scheduled price update skipped, previous run still going")
		return
	}
	defer s.ticking.Store(false)

	s.log.Info("scheduled price update starting")
	if _, err := s.run(context.Background()); err != nil {
		s.log.Error("scheduled price update failed", "error", err)
	}
	s.recordNextRun()
}

func (s *Scheduler) run(ctx context.Context) (*domain.BatchSummary, error) {
	summary, err := s.updater.UpdateAllPrices(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.mu.Lock()
	s.lastRun = &now
	s.lastSummary = summary
	s.mu.Unlock()
	return summary, nil
}

func (s *Scheduler) recordNextRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordNextRunLocked()
}

func (s *Scheduler) recordNextRunLocked() {
	if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
		metrics.SchedulerNextRunTimestamp.Set(float64(next.Unix()))
	}
}
