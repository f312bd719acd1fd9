package sweep

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the minimum time between sweeps when none is configured.
const DefaultInterval = 30 * time.Second

// WithSchedulerLogger sets the logger for the scheduler.
func WithSchedulerLogger(logger *slog.Logger) func(*Scheduler) {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// Scheduler rate-limits wide-band sweeps to a minimum inter-sweep interval.
// The first sweep after construction is unconditional; thereafter a sweep is
// triggered only when at least interval has elapsed since the last successful
// one. A failed sweep does not advance the last-sweep time, so the next
// eligible tick retries.
//
// The tick loop is the only caller of MaybeSweep, but the operator surface
// reads LastSweep and Interval from handler goroutines, so state is held
// under a mutex.
type Scheduler struct {
	runner Runner
	logger *slog.Logger

	mu        sync.Mutex
	interval  time.Duration
	lastSweep time.Time
	swept     bool
}

// NewScheduler creates a Scheduler driving the given runner.
func NewScheduler(runner Runner, interval time.Duration, options ...func(*Scheduler)) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s := Scheduler{
		runner:   runner,
		interval: interval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Due reports whether a sweep would be triggered at the given time.
func (s *Scheduler) Due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.due(now)
}

func (s *Scheduler) due(now time.Time) bool {
	return !s.swept || now.Sub(s.lastSweep) >= s.interval
}

// LastSweep returns the time of the last successful sweep and whether one
// has happened yet.
func (s *Scheduler) LastSweep() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSweep, s.swept
}

// Interval returns the minimum inter-sweep interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the minimum inter-sweep interval for subsequent calls.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
}

// MaybeSweep triggers a sweep if one is due and returns its rows.
// When no sweep is due it returns (nil, nil) with no side effect.
// The runner is invoked outside the lock, so concurrent readers are never
// blocked behind a running sweep.
func (s *Scheduler) MaybeSweep(ctx context.Context, now time.Time) ([]Row, error) {
	s.mu.Lock()
	due := s.due(now)
	s.mu.Unlock()

	if !due {
		return nil, nil
	}

	rows, err := s.runner.Sweep(ctx)
	if err != nil {
		// lastSweep stays put: the next eligible tick retries.
		s.logger.Warn("sweep failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.mu.Lock()
	s.lastSweep = now
	s.swept = true
	s.mu.Unlock()

	s.logger.Info("sweep complete", slog.Int("rows", len(rows)))
	return rows, nil
}
