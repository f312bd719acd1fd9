// Package track implements a chase session: repeated power sampling at one
// operator-chosen frequency, paired with the platform's moving position.
package track

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xericdusk/ghostbuster/internal/position"
)

// SentinelPower is recorded when a measurement fails. A failed reading must
// never terminate the session; it degrades to the floor value instead.
const SentinelPower = -100.0 // dBm

// PowerMeter measures instantaneous signal power at a center frequency.
type PowerMeter interface {
	Measure(ctx context.Context, frequency int64) (float64, error)
}

// Sample is one timestamped observation of the tracked signal. Samples are
// immutable once appended and ordered by timestamp within a session.
type Sample struct {
	Timestamp time.Time         `json:"timestamp"`
	Position  position.Position `json:"position"`
	Frequency int64             `json:"frequency"` // Hz
	Power     float64           `json:"power"`     // dBm
	Strength  Strength          `json:"strength"`
	Measured  bool              `json:"measured"` // false when Power is the failure sentinel
}

// WithSessionLogger sets the logger for the session.
func WithSessionLogger(logger *slog.Logger) func(*Session) {
	return func(s *Session) {
		s.logger = logger.With(slog.String("session", s.id.String()))
	}
}

// Session is the state of one chase: the active frequency, the append-only
// sample log, and the collaborators each tick consults. Ticks are issued
// serially by the chase loop; SelectCandidate may be called concurrently
// from the operator surface and takes effect on the next tick, never
// mid-tick.
type Session struct {
	id        uuid.UUID
	startTime time.Time

	meter     PowerMeter
	positions position.Source
	logger    *slog.Logger

	mu        sync.Mutex
	frequency int64
	samples   []Sample
}

// NewSession starts a chase at the given frequency.
func NewSession(frequency int64, meter PowerMeter, positions position.Source, options ...func(*Session)) *Session {
	s := Session{
		id:        uuid.New(),
		startTime: time.Now(),
		frequency: frequency,
		meter:     meter,
		positions: positions,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// StartTime returns when the session was created.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Frequency returns the active chase frequency in Hz.
func (s *Session) Frequency() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frequency
}

// SelectCandidate changes the frequency sampled by subsequent ticks.
func (s *Session) SelectCandidate(frequency int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frequency == s.frequency {
		return
	}

	s.logger.Info("candidate selected",
		slog.Int64("from", s.frequency),
		slog.Int64("to", frequency))
	s.frequency = frequency
}

// Tick takes one observation: it reads the current position, measures power
// at the active frequency, and appends exactly one sample to the log. On
// measurement failure the sample carries SentinelPower; the session always
// survives a failed reading.
func (s *Session) Tick(ctx context.Context, now time.Time) Sample {
	s.mu.Lock()
	frequency := s.frequency
	s.mu.Unlock()

	pos := s.positions.Current()

	power, err := s.meter.Measure(ctx, frequency)
	measured := err == nil
	if err != nil {
		power = SentinelPower
		s.logger.Warn("measurement failed, recording sentinel",
			slog.Int64("frequency", frequency),
			slog.String("error", err.Error()))
	}

	sample := Sample{
		Timestamp: now,
		Position:  pos,
		Frequency: frequency,
		Power:     power,
		Strength:  Classify(power),
		Measured:  measured,
	}

	s.mu.Lock()
	s.samples = append(s.samples, sample)
	s.mu.Unlock()

	return sample
}

// Len returns the number of samples in the log.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Last returns the most recent sample, if any.
func (s *Session) Last() (Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.samples) == 0 {
		return Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Samples returns a copy of the full observation log in tick order.
func (s *Session) Samples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}
