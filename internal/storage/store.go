package storage

import (
	"context"
	"time"

	"github.com/xericdusk/ghostbuster/internal/candidate"
	"github.com/xericdusk/ghostbuster/internal/track"
)

// ChaseSession is the stored metadata for one chase session.
type ChaseSession struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	StartTime time.Time `json:"startTime"`
	Frequency int64     `json:"frequency"` // Hz at session start
	Config    *string   `json:"config,omitempty"`
}

// Store persists chase sessions, their candidate sets and observation logs.
// All write operations are atomic.
type Store interface {
	// CreateSession records a new chase session and returns its row ID.
	// config may be a string, []byte or any JSON-serializable value.
	CreateSession(ctx context.Context, sessionUUID string, frequency int64, config any) (int64, error)

	// Session retrieves one session by row ID.
	Session(ctx context.Context, id int64) (*ChaseSession, error)

	// Sessions returns all sessions ordered by start time.
	Sessions(ctx context.Context) ([]*ChaseSession, error)

	// UpsertCandidates writes the given candidates, replacing any existing
	// rows for the same band within the session.
	UpsertCandidates(ctx context.Context, sessionID int64, candidates []candidate.Candidate) error

	// Candidates returns the session's accumulated candidates ordered by band.
	Candidates(ctx context.Context, sessionID int64) ([]candidate.Candidate, error)

	// StoreSamples appends observation samples in a single transaction.
	StoreSamples(ctx context.Context, sessionID int64, samples []track.Sample) error

	// Samples returns the session's observation log in timestamp order.
	Samples(ctx context.Context, sessionID int64) ([]track.Sample, error)

	// Close releases all database connections. Safe to call multiple times.
	Close() error
}
