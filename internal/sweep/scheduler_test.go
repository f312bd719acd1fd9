package sweep

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeRunner returns a canned result and counts invocations.
type fakeRunner struct {
	rows  []Row
	err   error
	calls int
}

func (f *fakeRunner) Sweep(ctx context.Context) ([]Row, error) {
	f.calls++
	return f.rows, f.err
}

func TestScheduler_FirstSweepUnconditional(t *testing.T) {
	runner := &fakeRunner{rows: []Row{{FrequencyLow: 400e6, FrequencyHigh: 405e6, PeakPower: -50}}}
	s := NewScheduler(runner, time.Hour)

	now := time.Now()
	if !s.Due(now) {
		t.Fatal("First sweep should be due immediately")
	}

	rows, err := s.MaybeSweep(context.Background(), now)
	if err != nil {
		t.Fatalf("MaybeSweep failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if runner.calls != 1 {
		t.Errorf("Expected 1 runner call, got %d", runner.calls)
	}
}

func TestScheduler_IntervalGating(t *testing.T) {
	runner := &fakeRunner{}
	s := NewScheduler(runner, 30*time.Second)

	base := time.Now()
	if _, err := s.MaybeSweep(context.Background(), base); err != nil {
		t.Fatalf("First sweep failed: %v", err)
	}

	tests := []struct {
		name    string
		elapsed time.Duration
		due     bool
	}{
		{"immediately after", 0, false},
		{"just under interval", 29 * time.Second, false},
		{"exactly at interval", 30 * time.Second, true},
		{"past interval", time.Minute, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Due(base.Add(tc.elapsed)); got != tc.due {
				t.Errorf("Due(+%v) = %v, want %v", tc.elapsed, got, tc.due)
			}
		})
	}
}

func TestScheduler_NotDueIsNoOp(t *testing.T) {
	runner := &fakeRunner{rows: []Row{{PeakPower: -40}}}
	s := NewScheduler(runner, time.Minute)

	base := time.Now()
	if _, err := s.MaybeSweep(context.Background(), base); err != nil {
		t.Fatalf("First sweep failed: %v", err)
	}

	rows, err := s.MaybeSweep(context.Background(), base.Add(time.Second))
	if err != nil {
		t.Fatalf("MaybeSweep returned error for a skipped sweep: %v", err)
	}
	if rows != nil {
		t.Errorf("Expected nil rows for a skipped sweep, got %d", len(rows))
	}
	if runner.calls != 1 {
		t.Errorf("Runner should not have been called again, got %d calls", runner.calls)
	}
}

func TestScheduler_FailureDoesNotAdvance(t *testing.T) {
	wantErr := errors.New("device busy")
	runner := &fakeRunner{err: wantErr}
	s := NewScheduler(runner, time.Minute)

	base := time.Now()
	if _, err := s.MaybeSweep(context.Background(), base); !errors.Is(err, wantErr) {
		t.Fatalf("Expected sweep error, got %v", err)
	}

	if _, ok := s.LastSweep(); ok {
		t.Error("Failed sweep must not record a last-sweep time")
	}

	// The very next tick retries because no sweep has succeeded yet.
	if !s.Due(base.Add(time.Second)) {
		t.Error("Scheduler should retry immediately after a failure")
	}

	runner.err = nil
	runner.rows = []Row{{PeakPower: -47}}
	if _, err := s.MaybeSweep(context.Background(), base.Add(time.Second)); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}

	last, ok := s.LastSweep()
	if !ok || !last.Equal(base.Add(time.Second)) {
		t.Errorf("LastSweep = (%v, %v), want (%v, true)", last, ok, base.Add(time.Second))
	}
	if runner.calls != 2 {
		t.Errorf("Expected 2 runner calls, got %d", runner.calls)
	}
}

func TestScheduler_SetInterval(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, 30*time.Second)

	base := time.Now()
	if _, err := s.MaybeSweep(context.Background(), base); err != nil {
		t.Fatalf("First sweep failed: %v", err)
	}

	s.SetInterval(5 * time.Second)
	if !s.Due(base.Add(5 * time.Second)) {
		t.Error("Shortened interval should make the sweep due sooner")
	}

	// Non-positive intervals are ignored.
	s.SetInterval(0)
	if s.Interval() != 5*time.Second {
		t.Errorf("Interval = %v, want 5s", s.Interval())
	}
}

func TestScheduler_ConcurrentReaders(t *testing.T) {
	runner := &fakeRunner{rows: []Row{{PeakPower: -47}}}
	s := NewScheduler(runner, time.Millisecond)

	done := make(chan struct{})
	var wg sync.WaitGroup

	// Status-style readers polling while the tick loop sweeps; the race
	// detector flags any unguarded access to the sweep bookkeeping.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					s.LastSweep()
					s.Interval()
					s.Due(time.Now())
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				s.SetInterval(time.Millisecond)
			}
		}
	}()

	start := time.Now()
	for i := 0; i < 200; i++ {
		if _, err := s.MaybeSweep(context.Background(), start.Add(time.Duration(i)*time.Millisecond)); err != nil {
			t.Fatalf("MaybeSweep failed: %v", err)
		}
	}
	close(done)
	wg.Wait()

	if _, ok := s.LastSweep(); !ok {
		t.Error("Expected at least one recorded sweep")
	}
}

func TestScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&fakeRunner{}, 0)
	if s.Interval() != DefaultInterval {
		t.Errorf("Interval = %v, want %v", s.Interval(), DefaultInterval)
	}
}
