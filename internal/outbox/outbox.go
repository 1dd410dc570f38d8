// Package outbox replicates locally-authored records to a remote backup
// queue. The queue is strictly best-effort: local reads and writes never
// wait on, or fail because of, the outbound side.
package outbox

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/daybook-app/daybook/internal/cache"
)

// Queue is the outbound collaborator. Implementations own their retry and
// durability story; the decorator only hands records over.
type Queue interface {
	EnqueueUpsert(ctx context.Context, recordType string, entity any) error
	EnqueueDelete(ctx context.Context, recordType, id string) error
	Close() error
}

// Local is the read/write surface being decorated.
type Local interface {
	Upsert(ctx context.Context, rec cache.Record) (cache.Record, error)
	Delete(ctx context.Context, kind cache.Kind, identity string) error
}

// SyncedStore forwards every successful local mutation to the queue.
// Local failures abort and propagate; enqueue failures are logged and
// swallowed so replication trouble never blocks local work.
type SyncedStore struct {
	local  Local
	queue  Queue
	logger *log.Logger
	skip   map[cache.Kind]struct{}
}

// SyncOption configures a SyncedStore.
type SyncOption func(*SyncedStore)

// WithoutReplication exempts kinds from forwarding. High-frequency,
// low-value kinds (raw location pings) use this to keep replication volume
// bounded.
func WithoutReplication(kinds ...cache.Kind) SyncOption {
	return func(s *SyncedStore) {
		for _, k := range kinds {
			s.skip[k] = struct{}{}
		}
	}
}

func NewSyncedStore(local Local, queue Queue, logger *log.Logger, opts ...SyncOption) *SyncedStore {
	s := &SyncedStore{
		local:  local,
		queue:  queue,
		logger: logger,
		skip:   make(map[cache.Kind]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert writes locally and then enqueues the persisted value. The local
// result is returned regardless of queue state.
func (s *SyncedStore) Upsert(ctx context.Context, rec cache.Record) (cache.Record, error) {
	persisted, err := s.local.Upsert(ctx, rec)
	if err != nil {
		return cache.Record{}, err
	}

	if _, skip := s.skip[rec.Kind]; !skip {
		if err := s.queue.EnqueueUpsert(ctx, rec.Kind.Name, persisted.Payload); err != nil {
			s.logger.Debug("sync enqueue failed", "kind", rec.Kind, "identity", rec.Identity, "err", err)
		}
	}
	return persisted, nil
}

// Delete removes locally and then enqueues a typed delete marker.
func (s *SyncedStore) Delete(ctx context.Context, kind cache.Kind, identity string) error {
	if err := s.local.Delete(ctx, kind, identity); err != nil {
		return err
	}

	if _, skip := s.skip[kind]; !skip {
		if err := s.queue.EnqueueDelete(ctx, kind.Name, identity); err != nil {
			s.logger.Debug("sync enqueue failed", "kind", kind, "identity", identity, "err", err)
		}
	}
	return nil
}

// StoreLocal adapts a cache.Store to the Local interface.
type StoreLocal struct {
	Store *cache.Store
}

func (l StoreLocal) Upsert(ctx context.Context, rec cache.Record) (cache.Record, error) {
	if _, err := l.Store.Put(ctx, rec); err != nil {
		return cache.Record{}, err
	}
	return l.Store.FetchOne(ctx, rec.Kind, rec.Identity)
}

func (l StoreLocal) Delete(ctx context.Context, kind cache.Kind, identity string) error {
	return l.Store.Delete(ctx, kind, identity)
}
