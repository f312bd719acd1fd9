package rssi

import "context"

// Unavailable is a power meter standing in for a capture tool that could not
// be resolved at startup. Every measurement reports the original error,
// which the track session degrades to its sentinel reading.
type Unavailable struct {
	Err error
}

func (u Unavailable) Measure(context.Context, int64) (float64, error) {
	return 0, u.Err
}
