package cache

import (
	"context"
	"time"
)

// Entry is the backend-level row: a record with its payload already
// serialized, plus the write timestamp the store resolves conflicts on.
type Entry struct {
	Source     string
	Kind       string
	Identity   string
	RecordDate time.Time
	FetchedAt  time.Time
	Payload    []byte
}

// Backend is the opaque persistence collaborator. Implementations do raw
// reads and writes only; conflict resolution and kind validation live in
// Store, which serializes access. Range returns entries in ascending
// RecordDate order; nil from/to bounds mean unbounded on that side.
type Backend interface {
	Put(ctx context.Context, e Entry) error
	Get(ctx context.Context, source, kind, identity string) (*Entry, error)
	Range(ctx context.Context, source, kind string, from, to *time.Time) ([]Entry, error)
	Bounds(ctx context.Context, source, kind string) (earliest, latest *time.Time, err error)
	Count(ctx context.Context, source, kind string) (int, error)
	Delete(ctx context.Context, source, kind, identity string) (bool, error)
	DeleteAll(ctx context.Context, source, kind string) error
	DeleteOlderThan(ctx context.Context, source, kind string, cutoff time.Time) error
	Close() error
}
