package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryBackend is an in-memory Backend used in tests and as a scratch
// store. Entries are copied on read and write to prevent aliasing.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]map[string]Entry // source/kind -> identity -> entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]map[string]Entry)}
}

func bucketKey(source, kind string) string {
	return source + "/" + kind
}

func copyEntry(e Entry) Entry {
	out := e
	out.Payload = make([]byte, len(e.Payload))
	copy(out.Payload, e.Payload)
	return out
}

func (b *MemoryBackend) Put(_ context.Context, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := bucketKey(e.Source, e.Kind)
	bucket, ok := b.entries[key]
	if !ok {
		bucket = make(map[string]Entry)
		b.entries[key] = bucket
	}
	bucket[e.Identity] = copyEntry(e)
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, source, kind, identity string) (*Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if e, ok := b.entries[bucketKey(source, kind)][identity]; ok {
		out := copyEntry(e)
		return &out, nil
	}
	return nil, nil
}

func (b *MemoryBackend) Range(_ context.Context, source, kind string, from, to *time.Time) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Entry
	for _, e := range b.entries[bucketKey(source, kind)] {
		if from != nil && e.RecordDate.Before(*from) {
			continue
		}
		if to != nil && e.RecordDate.After(*to) {
			continue
		}
		out = append(out, copyEntry(e))
	}
	sortEntriesByDate(out)
	return out, nil
}

func (b *MemoryBackend) Bounds(_ context.Context, source, kind string) (*time.Time, *time.Time, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var earliest, latest *time.Time
	for _, e := range b.entries[bucketKey(source, kind)] {
		d := e.RecordDate
		if earliest == nil || d.Before(*earliest) {
			t := d
			earliest = &t
		}
		if latest == nil || d.After(*latest) {
			t := d
			latest = &t
		}
	}
	return earliest, latest, nil
}

func (b *MemoryBackend) Count(_ context.Context, source, kind string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries[bucketKey(source, kind)]), nil
}

func (b *MemoryBackend) Delete(_ context.Context, source, kind, identity string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bucket := b.entries[bucketKey(source, kind)]
	if _, ok := bucket[identity]; !ok {
		return false, nil
	}
	delete(bucket, identity)
	return true, nil
}

func (b *MemoryBackend) DeleteAll(_ context.Context, source, kind string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, bucketKey(source, kind))
	return nil
}

func (b *MemoryBackend) DeleteOlderThan(_ context.Context, source, kind string, cutoff time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bucket := b.entries[bucketKey(source, kind)]
	for identity, e := range bucket {
		if e.RecordDate.Before(cutoff) {
			delete(bucket, identity)
		}
	}
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

func sortEntriesByDate(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RecordDate.Before(entries[j].RecordDate)
	})
}
