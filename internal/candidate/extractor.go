package candidate

import (
	"github.com/xericdusk/ghostbuster/internal/sweep"
)

// Extractor derives candidates from sweep rows using a fixed power threshold.
type Extractor struct {
	threshold float64
}

// NewExtractor creates an Extractor. A zero threshold selects the default;
// pass an explicit non-zero dBm value to override.
func NewExtractor(threshold float64) *Extractor {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &Extractor{threshold: threshold}
}

// Threshold returns the configured minimum peak power in dBm.
func (e *Extractor) Threshold() float64 {
	return e.threshold
}

// Extract groups rows by band, keeps the maximum peak power per band and
// drops bands whose maximum is below the threshold. The returned slice never
// contains two candidates for the same band.
func (e *Extractor) Extract(rows []sweep.Row) []Candidate {
	if len(rows) == 0 {
		return nil
	}

	best := make(map[Band]Candidate)
	for _, row := range rows {
		band := Band{Low: row.FrequencyLow, High: row.FrequencyHigh}

		if cur, ok := best[band]; !ok || row.PeakPower > cur.PeakPower {
			best[band] = Candidate{
				Band:      band,
				PeakPower: row.PeakPower,
				LastSeen:  row.Timestamp,
			}
		}
	}

	candidates := make([]Candidate, 0, len(best))
	for _, c := range best {
		if c.PeakPower < e.threshold {
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates
}
