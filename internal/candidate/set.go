package candidate

import (
	"sort"
	"sync"
)

// Set accumulates candidates across sweeps, keyed by band. Later sweeps
// replace a band's entry; bands absent from a sweep are retained, so the set
// only ever grows or updates, never shrinks.
//
// Set is safe for concurrent use: the tick loop merges while the operator
// surface snapshots.
type Set struct {
	mu    sync.RWMutex
	bands map[Band]Candidate
}

// NewSet creates an empty candidate set.
func NewSet() *Set {
	return &Set{bands: make(map[Band]Candidate)}
}

// Merge folds new candidates into the set: replace if the band is present,
// insert otherwise. Merging the same slice twice yields the same set as
// merging it once.
func (s *Set) Merge(candidates []Candidate) {
	if len(candidates) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range candidates {
		s.bands[c.Band] = c
	}
}

// Get returns the candidate for a band, if present.
func (s *Set) Get(band Band) (Candidate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.bands[band]
	return c, ok
}

// Len returns the number of distinct bands in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bands)
}

// Snapshot returns the candidates ordered by band low frequency.
func (s *Set) Snapshot() []Candidate {
	s.mu.RLock()
	candidates := make([]Candidate, 0, len(s.bands))
	for _, c := range s.bands {
		candidates = append(candidates, c)
	}
	s.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Band.Low != candidates[j].Band.Low {
			return candidates[i].Band.Low < candidates[j].Band.Low
		}
		return candidates[i].Band.High < candidates[j].Band.High
	})

	return candidates
}
