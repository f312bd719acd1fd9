package track

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		power float64
		want  Strength
	}{
		{"well above strong boundary", -30, Strong},
		{"just above strong boundary", -49.999, Strong},
		{"exactly at strong boundary", -50, Moderate},
		{"between boundaries", -55, Moderate},
		{"just above moderate boundary", -59.999, Moderate},
		{"exactly at moderate boundary", -60, Weak},
		{"below moderate boundary", -75, Weak},
		{"failure sentinel", SentinelPower, Weak},
		{"positive reading", 3, Strong},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.power); got != tc.want {
				t.Errorf("Classify(%f) = %s, want %s", tc.power, got, tc.want)
			}
		})
	}
}
