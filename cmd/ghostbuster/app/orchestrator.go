package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xericdusk/ghostbuster/internal/candidate"
	"github.com/xericdusk/ghostbuster/internal/metrics"
	"github.com/xericdusk/ghostbuster/internal/position"
	"github.com/xericdusk/ghostbuster/internal/server"
	"github.com/xericdusk/ghostbuster/internal/storage"
	"github.com/xericdusk/ghostbuster/internal/sweep"
	"github.com/xericdusk/ghostbuster/internal/track"
)

var (
	// ErrChaseRunning is returned when a chase is started while one is active.
	ErrChaseRunning = errors.New("chase already running")

	// ErrNoChase is returned by chase commands when no chase is active.
	ErrNoChase = errors.New("no chase running")
)

// storeTimeout bounds persistence calls issued from operator commands.
const storeTimeout = 5 * time.Second

// liveEvent is the message pushed to websocket dashboard clients.
type liveEvent struct {
	Type       string                `json:"type"` // "sample", "candidates" or "position"
	Sample     *track.Sample         `json:"sample,omitempty"`
	Candidates []candidate.Candidate `json:"candidates,omitempty"`
	Position   *position.Position    `json:"position,omitempty"`
}

// Orchestrator runs the chase loop: one strictly serial stream of sweep,
// candidate merge and track ticks. Operator commands arriving from the API
// mutate state between ticks only; the external sweep and measurement tools
// are never invoked concurrently.
type Orchestrator struct {
	logger *slog.Logger
	store  storage.Store

	scheduler  *sweep.Scheduler
	extractor  *candidate.Extractor
	candidates *candidate.Set
	meter      track.PowerMeter
	positions  *position.Feed
	hub        *server.Hub

	tickInterval time.Duration

	mu              sync.Mutex
	session         *track.Session
	sessionRowID    int64
	surveyRowID     int64
	pendingInterval time.Duration
}

// NewOrchestrator wires the chase loop collaborators together.
func NewOrchestrator(
	store storage.Store,
	scheduler *sweep.Scheduler,
	extractor *candidate.Extractor,
	meter track.PowerMeter,
	positions *position.Feed,
	hub *server.Hub,
	tickInterval time.Duration,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		logger:       logger.With(slog.String("component", "orchestrator")),
		store:        store,
		scheduler:    scheduler,
		extractor:    extractor,
		candidates:   candidate.NewSet(),
		meter:        meter,
		positions:    positions,
		hub:          hub,
		tickInterval: tickInterval,
	}
}

// Run drives the tick loop until ctx is cancelled. Cancellation takes effect
// within one tick.
func (o *Orchestrator) Run(ctx context.Context) error {
	// The survey session owns candidates discovered outside any chase.
	surveyID, err := o.store.CreateSession(ctx, uuid.NewString(), 0, nil)
	if err != nil {
		return fmt.Errorf("creating survey session: %w", err)
	}

	o.mu.Lock()
	o.surveyRowID = surveyID
	o.mu.Unlock()

	ticker := time.NewTicker(o.tickInterval)
	defer ticker.Stop()

	o.logger.Info("chase loop started", slog.Duration("tick", o.tickInterval))

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("chase loop stopped")
			return nil

		case now := <-ticker.C:
			o.tick(ctx, now)
		}
	}
}

// tick runs one full pass: sweep if due, merge candidates, then sample the
// tracked signal if a chase is active.
func (o *Orchestrator) tick(ctx context.Context, now time.Time) {
	o.mu.Lock()
	if o.pendingInterval > 0 {
		o.scheduler.SetInterval(o.pendingInterval)
		o.pendingInterval = 0
	}
	sess := o.session
	sessionRowID := o.sessionRowID
	surveyRowID := o.surveyRowID
	o.mu.Unlock()

	o.runSweep(ctx, now, surveyRowID)

	if sess == nil {
		return
	}

	sample := sess.Tick(ctx, now)

	metrics.SamplesRecorded.Inc()
	metrics.LastPower.Set(sample.Power)
	if !sample.Measured {
		metrics.MeasurementFailures.Inc()
	}

	if err := o.store.StoreSamples(ctx, sessionRowID, []track.Sample{sample}); err != nil {
		o.logger.Error("storing sample", slog.String("error", err.Error()))
	}

	o.hub.Broadcast(liveEvent{Type: "sample", Sample: &sample})
}

func (o *Orchestrator) runSweep(ctx context.Context, now time.Time, surveyRowID int64) {
	rows, err := o.scheduler.MaybeSweep(ctx, now)
	if err != nil {
		metrics.SweepFailures.Inc()
		return
	}
	if rows == nil {
		return // not due
	}

	metrics.SweepsTotal.Inc()

	found := o.extractor.Extract(rows)
	o.candidates.Merge(found)
	metrics.CandidateBands.Set(float64(o.candidates.Len()))

	snapshot := o.candidates.Snapshot()
	if err := o.store.UpsertCandidates(ctx, surveyRowID, snapshot); err != nil {
		o.logger.Error("storing candidates", slog.String("error", err.Error()))
	}

	o.hub.Broadcast(liveEvent{Type: "candidates", Candidates: snapshot})
}

// Status implements server.Controller.
func (o *Orchestrator) Status() server.Status {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()

	status := server.Status{
		Candidates: o.candidates.Len(),
		Position:   o.positions.Current(),
	}

	if last, ok := o.scheduler.LastSweep(); ok {
		status.LastSweep = &last
	}

	if sess != nil {
		status.Chasing = true
		status.SessionUUID = sess.ID().String()
		status.Frequency = sess.Frequency()
		status.SampleCount = sess.Len()
	}

	return status
}

// Candidates implements server.Controller.
func (o *Orchestrator) Candidates() []candidate.Candidate {
	return o.candidates.Snapshot()
}

// Samples implements server.Controller. Returns the active session's log,
// or nil when no chase is running.
func (o *Orchestrator) Samples() []track.Sample {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()

	if sess == nil {
		return nil
	}
	return sess.Samples()
}

// StartChase implements server.Controller.
func (o *Orchestrator) StartChase(frequency int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != nil {
		return ErrChaseRunning
	}

	sess := track.NewSession(frequency, o.meter, o.positions,
		track.WithSessionLogger(o.logger))

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	rowID, err := o.store.CreateSession(ctx, sess.ID().String(), frequency, nil)
	if err != nil {
		return fmt.Errorf("creating chase session: %w", err)
	}

	o.session = sess
	o.sessionRowID = rowID

	o.logger.Info("chase started",
		slog.String("session", sess.ID().String()),
		slog.Int64("frequency", frequency))

	return nil
}

// StopChase implements server.Controller. The active tick, if any, completes
// before the stop is observed; no new ticks sample after it.
func (o *Orchestrator) StopChase() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return ErrNoChase
	}

	o.logger.Info("chase stopped",
		slog.String("session", o.session.ID().String()),
		slog.Int("samples", o.session.Len()))

	o.session = nil
	o.sessionRowID = 0

	return nil
}

// SelectFrequency implements server.Controller.
func (o *Orchestrator) SelectFrequency(frequency int64) error {
	o.mu.Lock()
	sess := o.session
	o.mu.Unlock()

	if sess == nil {
		return ErrNoChase
	}

	sess.SelectCandidate(frequency)
	return nil
}

// SetSweepInterval implements server.Controller. The new interval is applied
// at the start of the next tick.
func (o *Orchestrator) SetSweepInterval(interval time.Duration) error {
	if interval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	o.mu.Lock()
	o.pendingInterval = interval
	o.mu.Unlock()

	return nil
}

// UpdatePosition implements server.Controller.
func (o *Orchestrator) UpdatePosition(p position.Position) {
	o.positions.Update(p)
	o.hub.Broadcast(liveEvent{Type: "position", Position: &p})
}
