// Package scheduler drives the recurring sync workflow: one interval-based
// trigger and one daily wall-clock trigger, both invoking the same entry
// point. The scheduler is a process-scoped object with an explicit
// start/stop lifecycle, no package globals.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Debashish4357/Personal-Finance-Aggregator/internal/services"
)

// Workflow is the no-argument sync entry point the scheduler fires.
type Workflow func(ctx context.Context) error

type Config struct {
	// Interval between recurring runs (default: hourly).
	Interval time.Duration

	// DailyAtHour/DailyAtMinute is the wall-clock time of the daily run
	// (default: midnight).
	DailyAtHour   int
	DailyAtMinute int
}

func DefaultConfig() Config {
	return Config{
		Interval:      time.Hour,
		DailyAtHour:   0,
		DailyAtMinute: 0,
	}
}

type Scheduler struct {
	workflow Workflow
	config   Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func New(workflow Workflow, config Config) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &Scheduler{
		workflow: workflow,
		config:   config,
	}
}

// Start begins the trigger loop. Returns an error if already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Scheduler started",
		"interval", s.config.Interval,
		"daily_at", fmt.Sprintf("%02d:%02d", s.config.DailyAtHour, s.config.DailyAtMinute))

	return nil
}

// Stop signals the loop and waits for it to finish or the context to
// expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.doneCh:
		slog.InfoContext(ctx, "Scheduler stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	return nil
}

// IsRunning reports whether the trigger loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow invokes the workflow on demand, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.workflow(ctx)
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	daily := time.NewTimer(time.Until(s.nextDailyFire(time.Now())))
	defer daily.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(ctx, "interval")
		case <-daily.C:
			s.fire(ctx, "daily")
			daily.Reset(time.Until(s.nextDailyFire(time.Now())))
		}
	}
}

// fire runs the workflow for one trigger. An overlapping run is skipped,
// not queued.
func (s *Scheduler) fire(ctx context.Context, trigger string) {
	slog.InfoContext(ctx, "Scheduled sync firing", "trigger", trigger)
	if err := s.workflow(ctx); err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			slog.WarnContext(ctx, "Skipping scheduled sync, previous run still in progress",
				"trigger", trigger)
			return
		}
		slog.ErrorContext(ctx, "Scheduled sync failed", "trigger", trigger, "error", err)
	}
}

// nextDailyFire returns the next wall-clock occurrence of the configured
// daily time, strictly after now.
func (s *Scheduler) nextDailyFire(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(),
		s.config.DailyAtHour, s.config.DailyAtMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
