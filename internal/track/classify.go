package track

// Strength is the display bucket for a power reading.
type Strength string

const (
	Strong   Strength = "strong"
	Moderate Strength = "moderate"
	Weak     Strength = "weak"
)

// Bucket boundaries in dBm. Comparisons are strict: exactly -50 dBm is
// moderate, exactly -60 dBm is weak.
const (
	StrongAbove   = -50.0
	ModerateAbove = -60.0
)

// Classify maps a power reading to its strength bucket. Total over all
// float64 values: every reading lands in exactly one bucket.
func Classify(power float64) Strength {
	switch {
	case power > StrongAbove:
		return Strong
	case power > ModerateAbove:
		return Moderate
	default:
		return Weak
	}
}
