// Package rssi measures instantaneous signal power at a single frequency by
// capturing a short burst of raw IQ samples with an external tool and
// computing the mean power over the buffer.
package rssi

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrShortCapture is returned when the capture file holds fewer than one
	// complete IQ pair.
	ErrShortCapture = errors.New("capture too short")

	// ErrSilentCapture is returned when every sample in the capture is zero,
	// which indicates a dead receiver rather than a weak signal.
	ErrSilentCapture = errors.New("capture contains only zero samples")
)

// Power computes the power estimate in dBm over a raw interleaved IQ buffer:
// 8-bit signed samples, even indices I, odd indices Q, and
// 10*log10(mean(I^2+Q^2)) - 30.
func Power(raw []byte) (float64, error) {
	if len(raw) < 2 {
		return 0, ErrShortCapture
	}

	pairs := len(raw) / 2 // A trailing odd byte is ignored
	magnitudes := make([]float64, pairs)
	for n := 0; n < pairs; n++ {
		i := float64(int8(raw[2*n]))
		q := float64(int8(raw[2*n+1]))
		magnitudes[n] = i*i + q*q
	}

	mean := stat.Mean(magnitudes, nil)
	if mean <= 0 {
		return 0, ErrSilentCapture
	}

	return 10*math.Log10(mean) - 30, nil
}
