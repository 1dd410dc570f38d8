package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Store is the conflict-safe record cache. All operations are serialized
// through a single mutex so the read-decide-write sequence in Put is atomic
// with respect to other callers; pure consumers downstream need no locking.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	registry *Registry
	now      func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces the wall clock, letting tests pin FetchedAt stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(backend Backend, registry *Registry, opts ...StoreOption) *Store {
	s := &Store{
		backend:  backend,
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores records with last-writer-wins resolution: a record replaces an
// existing entry for the same identity only when the current clock is
// strictly later than the entry's FetchedAt. Ties and older writes are
// discarded silently, which makes duplicate stores idempotent and safe to
// retry. Returns the number of records actually written.
func (s *Store) Put(ctx context.Context, records ...Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, rec := range records {
		if _, err := s.registry.Lookup(rec.Kind); err != nil {
			return written, err
		}

		now := s.now()
		existing, err := s.backend.Get(ctx, string(rec.Kind.Source), rec.Kind.Name, rec.Identity)
		if err != nil {
			return written, fmt.Errorf("reading %s %q: %w", rec.Kind, rec.Identity, err)
		}
		if existing != nil && !now.After(existing.FetchedAt) {
			continue
		}

		payload, err := json.Marshal(rec.Payload)
		if err != nil {
			return written, fmt.Errorf("encoding %s %q: %w", rec.Kind, rec.Identity, err)
		}
		entry := Entry{
			Source:     string(rec.Kind.Source),
			Kind:       rec.Kind.Name,
			Identity:   rec.Identity,
			RecordDate: rec.RecordDate,
			FetchedAt:  now,
			Payload:    payload,
		}
		if err := s.backend.Put(ctx, entry); err != nil {
			return written, fmt.Errorf("writing %s %q: %w", rec.Kind, rec.Identity, err)
		}
		written++
	}
	return written, nil
}

// FetchRange returns records of one kind whose RecordDate falls in the
// inclusive [from, to] range, ascending by RecordDate. Nil bounds are
// unbounded on that side.
func (s *Store) FetchRange(ctx context.Context, kind Kind, from, to *time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc, err := s.registry.Lookup(kind)
	if err != nil {
		return nil, err
	}
	entries, err := s.backend.Range(ctx, string(kind.Source), kind.Name, from, to)
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", kind, err)
	}
	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		rec, err := decodeEntry(desc, e)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchOne is a point lookup by identity. Returns ErrNotFound when absent.
func (s *Store) FetchOne(ctx context.Context, kind Kind, identity string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc, err := s.registry.Lookup(kind)
	if err != nil {
		return Record{}, err
	}
	entry, err := s.backend.Get(ctx, string(kind.Source), kind.Name, identity)
	if err != nil {
		return Record{}, fmt.Errorf("reading %s %q: %w", kind, identity, err)
	}
	if entry == nil {
		return Record{}, fmt.Errorf("%w: %s %q", ErrNotFound, kind, identity)
	}
	return decodeEntry(desc, *entry)
}

// EarliestRecordDate returns the minimum RecordDate for a kind, or nil when
// the kind has no entries.
func (s *Store) EarliestRecordDate(ctx context.Context, kind Kind) (*time.Time, error) {
	earliest, _, err := s.bounds(ctx, kind)
	return earliest, err
}

// LatestRecordDate returns the maximum RecordDate for a kind, or nil when
// the kind has no entries.
func (s *Store) LatestRecordDate(ctx context.Context, kind Kind) (*time.Time, error) {
	_, latest, err := s.bounds(ctx, kind)
	return latest, err
}

func (s *Store) bounds(ctx context.Context, kind Kind) (*time.Time, *time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.registry.Lookup(kind); err != nil {
		return nil, nil, err
	}
	earliest, latest, err := s.backend.Bounds(ctx, string(kind.Source), kind.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("bounds %s: %w", kind, err)
	}
	return earliest, latest, nil
}

// Count returns the number of live entries for a kind.
func (s *Store) Count(ctx context.Context, kind Kind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.registry.Lookup(kind); err != nil {
		return 0, err
	}
	n, err := s.backend.Count(ctx, string(kind.Source), kind.Name)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

// HasData reports whether any entry of the kind exists.
func (s *Store) HasData(ctx context.Context, kind Kind) (bool, error) {
	n, err := s.Count(ctx, kind)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes a single entry by identity. Returns ErrNotFound when no
// entry matched.
func (s *Store) Delete(ctx context.Context, kind Kind, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.registry.Lookup(kind); err != nil {
		return err
	}
	deleted, err := s.backend.Delete(ctx, string(kind.Source), kind.Name, identity)
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", kind, identity, err)
	}
	if !deleted {
		return fmt.Errorf("%w: %s %q", ErrNotFound, kind, identity)
	}
	return nil
}

// DeleteAll removes every entry of the kind.
func (s *Store) DeleteAll(ctx context.Context, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.registry.Lookup(kind); err != nil {
		return err
	}
	if err := s.backend.DeleteAll(ctx, string(kind.Source), kind.Name); err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	return nil
}

// DeleteOlderThan prunes entries with RecordDate before cutoff. Used to
// bound storage for high-frequency kinds like raw location pings.
func (s *Store) DeleteOlderThan(ctx context.Context, kind Kind, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.registry.Lookup(kind); err != nil {
		return err
	}
	if err := s.backend.DeleteOlderThan(ctx, string(kind.Source), kind.Name, cutoff); err != nil {
		return fmt.Errorf("pruning %s: %w", kind, err)
	}
	return nil
}

func decodeEntry(desc Descriptor, e Entry) (Record, error) {
	payload, err := desc.Decode(e.Payload)
	if err != nil {
		return Record{}, fmt.Errorf("decoding %s %q: %w", desc.Kind, e.Identity, err)
	}
	return Record{
		Kind:       desc.Kind,
		Identity:   e.Identity,
		RecordDate: e.RecordDate,
		Payload:    payload,
	}, nil
}
