package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xericdusk/ghostbuster/internal/candidate"
	"github.com/xericdusk/ghostbuster/internal/position"
	"github.com/xericdusk/ghostbuster/internal/track"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	store := NewSqliteStore(filepath.Join(t.TempDir(), "test.sqlite"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return store
}

func TestSqliteStore_Sessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateSession(ctx, "11111111-1111-1111-1111-111111111111", 433_000_000, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateSession returned ID %d, want > 0", id)
	}

	config := map[string]any{"threshold": -60}
	id2, err := store.CreateSession(ctx, "22222222-2222-2222-2222-222222222222", 915_000_000, config)
	if err != nil {
		t.Fatalf("CreateSession with config failed: %v", err)
	}

	sess, err := store.Session(ctx, id)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if sess.UUID != "11111111-1111-1111-1111-111111111111" || sess.Frequency != 433_000_000 {
		t.Errorf("Session = %+v", sess)
	}
	if sess.Config != nil {
		t.Errorf("Session without config returned %q", *sess.Config)
	}

	sess2, err := store.Session(ctx, id2)
	if err != nil {
		t.Fatalf("Session failed: %v", err)
	}
	if sess2.Config == nil || *sess2.Config != `{"threshold":-60}` {
		t.Errorf("Session config = %v, want marshaled JSON", sess2.Config)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("Sessions returned %d rows, want 2", len(sessions))
	}
}

func TestSqliteStore_Candidates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateSession(ctx, "33333333-3333-3333-3333-333333333333", 0, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	seen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := []candidate.Candidate{
		{Band: candidate.Band{Low: 400e6, High: 405e6}, PeakPower: -50, LastSeen: seen},
		{Band: candidate.Band{Low: 405e6, High: 410e6}, PeakPower: -55, LastSeen: seen},
	}
	if err = store.UpsertCandidates(ctx, id, first); err != nil {
		t.Fatalf("UpsertCandidates failed: %v", err)
	}

	// Upsert replaces rows for a band already present and keeps the rest.
	second := []candidate.Candidate{
		{Band: candidate.Band{Low: 405e6, High: 410e6}, PeakPower: -42, LastSeen: seen.Add(time.Minute)},
	}
	if err = store.UpsertCandidates(ctx, id, second); err != nil {
		t.Fatalf("UpsertCandidates (replace) failed: %v", err)
	}

	got, err := store.Candidates(ctx, id)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Candidates returned %d rows, want 2", len(got))
	}

	byBand := make(map[candidate.Band]candidate.Candidate)
	for _, c := range got {
		byBand[c.Band] = c
	}

	if c := byBand[candidate.Band{Low: 400e6, High: 405e6}]; c.PeakPower != -50 {
		t.Errorf("Untouched band peak = %f, want -50", c.PeakPower)
	}
	if c := byBand[candidate.Band{Low: 405e6, High: 410e6}]; c.PeakPower != -42 {
		t.Errorf("Replaced band peak = %f, want -42", c.PeakPower)
	}
}

func TestSqliteStore_Samples(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.CreateSession(ctx, "44444444-4444-4444-4444-444444444444", 433_000_000, nil)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	samples := []track.Sample{
		{
			Timestamp: base,
			Position:  position.Position{Latitude: 36.85, Longitude: -75.97, Heading: 90},
			Frequency: 433_000_000,
			Power:     -45,
			Strength:  track.Strong,
			Measured:  true,
		},
		{
			Timestamp: base.Add(2 * time.Second),
			Position:  position.Position{Latitude: 36.86, Longitude: -75.98, Heading: 92},
			Frequency: 433_000_000,
			Power:     track.SentinelPower,
			Strength:  track.Weak,
			Measured:  false,
		},
	}

	if err = store.StoreSamples(ctx, id, samples); err != nil {
		t.Fatalf("StoreSamples failed: %v", err)
	}

	got, err := store.Samples(ctx, id)
	if err != nil {
		t.Fatalf("Samples failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Samples returned %d rows, want 2", len(got))
	}

	if !got[0].Timestamp.Equal(base) || got[0].Power != -45 || got[0].Strength != track.Strong || !got[0].Measured {
		t.Errorf("Sample 0 = %+v", got[0])
	}
	if got[0].Position.Latitude != 36.85 || got[0].Position.Heading != 90 {
		t.Errorf("Sample 0 position = %+v", got[0].Position)
	}

	if got[1].Power != track.SentinelPower || got[1].Measured {
		t.Errorf("Sample 1 = %+v, want the unmeasured sentinel", got[1])
	}

	// Storing nothing is a no-op, not an error.
	if err = store.StoreSamples(ctx, id, nil); err != nil {
		t.Errorf("StoreSamples(nil) failed: %v", err)
	}
}

func TestSqliteStore_CloseIdempotent(t *testing.T) {
	store := NewSqliteStore(filepath.Join(t.TempDir(), "test.sqlite"))

	if _, err := store.CreateSession(context.Background(), "55555555-5555-5555-5555-555555555555", 0, nil); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("First Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}
}
