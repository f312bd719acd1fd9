// Package candidate folds sweep rows into the set of frequency bands worth
// chasing: per band, the strongest peak power seen across all sweeps so far.
package candidate

import "time"

// DefaultThreshold is the minimum peak power for a band to be considered a
// signal of interest.
const DefaultThreshold = -60.0 // dBm

// Band is a frequency range from a sweep bin.
type Band struct {
	Low  int64 `json:"low"`  // Hz
	High int64 `json:"high"` // Hz
}

// Center returns the band's center frequency in Hz.
func (b Band) Center() int64 {
	return b.Low + (b.High-b.Low)/2
}

// Candidate is a band flagged as containing a signal of interest, carrying
// the strongest peak power observed for it so far.
type Candidate struct {
	Band      Band      `json:"band"`
	PeakPower float64   `json:"peakPower"` // dBm
	LastSeen  time.Time `json:"lastSeen"`
}
