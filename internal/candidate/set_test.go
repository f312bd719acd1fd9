package candidate

import (
	"testing"
	"time"
)

func TestSet_MergeAccumulates(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSet()

	first := []Candidate{
		{Band: Band{Low: 400e6, High: 405e6}, PeakPower: -50, LastSeen: base},
		{Band: Band{Low: 405e6, High: 410e6}, PeakPower: -55, LastSeen: base},
	}
	s.Merge(first)

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}

	// A later sweep that no longer sees the first band must not remove it,
	// and must replace the entry for the band it does see.
	second := []Candidate{
		{Band: Band{Low: 405e6, High: 410e6}, PeakPower: -48, LastSeen: base.Add(time.Minute)},
		{Band: Band{Low: 410e6, High: 415e6}, PeakPower: -59, LastSeen: base.Add(time.Minute)},
	}
	s.Merge(second)

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3 after accumulating merge", s.Len())
	}

	retained, ok := s.Get(Band{Low: 400e6, High: 405e6})
	if !ok {
		t.Fatal("Band absent from the second sweep should be retained")
	}
	if retained.PeakPower != -50 {
		t.Errorf("Retained peak = %f, want -50", retained.PeakPower)
	}

	replaced, ok := s.Get(Band{Low: 405e6, High: 410e6})
	if !ok {
		t.Fatal("Re-seen band missing from set")
	}
	if replaced.PeakPower != -48 || !replaced.LastSeen.Equal(base.Add(time.Minute)) {
		t.Errorf("Re-seen band = %+v, expected the newer entry", replaced)
	}
}

func TestSet_MergeIdempotent(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	candidates := []Candidate{
		{Band: Band{Low: 400e6, High: 405e6}, PeakPower: -50, LastSeen: base},
		{Band: Band{Low: 405e6, High: 410e6}, PeakPower: -55, LastSeen: base},
	}

	once := NewSet()
	once.Merge(candidates)

	twice := NewSet()
	twice.Merge(candidates)
	twice.Merge(candidates)

	if once.Len() != twice.Len() {
		t.Fatalf("Merging twice changed the set size: %d vs %d", once.Len(), twice.Len())
	}

	for _, c := range candidates {
		a, _ := once.Get(c.Band)
		b, _ := twice.Get(c.Band)
		if a != b {
			t.Errorf("Band %+v differs after double merge: %+v vs %+v", c.Band, a, b)
		}
	}
}

func TestSet_SnapshotOrdered(t *testing.T) {
	s := NewSet()
	s.Merge([]Candidate{
		{Band: Band{Low: 410e6, High: 415e6}, PeakPower: -40},
		{Band: Band{Low: 400e6, High: 405e6}, PeakPower: -50},
		{Band: Band{Low: 405e6, High: 410e6}, PeakPower: -45},
	})

	snapshot := s.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("Snapshot size = %d, want 3", len(snapshot))
	}

	for i := 1; i < len(snapshot); i++ {
		if snapshot[i-1].Band.Low > snapshot[i].Band.Low {
			t.Errorf("Snapshot not ordered by band low: %+v before %+v",
				snapshot[i-1].Band, snapshot[i].Band)
		}
	}
}

func TestSet_MergeEmpty(t *testing.T) {
	s := NewSet()
	s.Merge(nil)
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}
