package position

import (
	"sync"
	"time"
)

// Position is the tracking platform's location at a point in time.
type Position struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Heading   float64   `json:"heading"`
	Timestamp time.Time `json:"timestamp"`
}

// Source supplies the platform's current position to the tick loop.
type Source interface {
	Current() Position
}

// Feed is a last-value-wins position source fed by an external transport
// (typically the operator UI posting browser geolocation fixes). Until the
// first fix arrives it reports the configured fallback position. Stored fixes
// never expire: a stale position is considered better than no position while
// the vehicle is between GPS fixes.
type Feed struct {
	mu       sync.RWMutex
	current  Position
	haveFix  bool
	fallback Position
}

// NewFeed creates a Feed that reports fallback until the first Update.
func NewFeed(fallback Position) *Feed {
	return &Feed{fallback: fallback}
}

// Update records a new fix. The previous value is discarded.
func (f *Feed) Update(p Position) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}

	f.current = p
	f.haveFix = true
}

// Current returns the last-known position, or the fallback if no fix
// has been received yet.
func (f *Feed) Current() Position {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.haveFix {
		return f.fallback
	}
	return f.current
}

// HaveFix reports whether at least one real fix has been received.
func (f *Feed) HaveFix() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.haveFix
}

// Static is a fixed position source, used for bench testing without a
// geolocation feed.
type Static struct {
	Position Position
}

func (s Static) Current() Position {
	return s.Position
}
