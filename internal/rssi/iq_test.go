package rssi

import (
	"errors"
	"math"
	"testing"
)

func TestPower(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want float64
	}{
		{
			// I=1, Q=0 for every pair: mean magnitude 1, 10*log10(1)-30.
			name: "unit magnitude",
			raw:  []byte{1, 0, 1, 0, 1, 0, 1, 0},
			want: -30,
		},
		{
			// I=10, Q=0: mean magnitude 100, 10*log10(100)-30 = -10.
			name: "magnitude 100",
			raw:  []byte{10, 0, 10, 0},
			want: -10,
		},
		{
			// Signed samples: -1 as 0xff, magnitude (-1)^2+(-1)^2 = 2.
			name: "negative samples",
			raw:  []byte{0xff, 0xff},
			want: 10*math.Log10(2) - 30,
		},
		{
			// Mixed magnitudes 1 and 9 average to 5.
			name: "mixed magnitudes",
			raw:  []byte{1, 0, 3, 0},
			want: 10*math.Log10(5) - 30,
		},
		{
			// The trailing odd byte is ignored; only the first pair counts.
			name: "trailing odd byte",
			raw:  []byte{1, 0, 100},
			want: -30,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Power(tc.raw)
			if err != nil {
				t.Fatalf("Power failed: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Power = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestPower_ShortCapture(t *testing.T) {
	for _, raw := range [][]byte{nil, {}, {1}} {
		if _, err := Power(raw); !errors.Is(err, ErrShortCapture) {
			t.Errorf("Power(%v) error = %v, want ErrShortCapture", raw, err)
		}
	}
}

func TestPower_SilentCapture(t *testing.T) {
	raw := make([]byte, 1024)
	if _, err := Power(raw); !errors.Is(err, ErrSilentCapture) {
		t.Errorf("Power on all-zero capture error = %v, want ErrSilentCapture", err)
	}
}
