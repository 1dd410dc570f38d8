package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/daybook-app/daybook/internal/cache"
)

// Remote is the provider-side collaborator. It is invoked only with the
// range a strategy computed; failures propagate to the refresher's caller
// untouched — no retries happen at this layer.
type Remote interface {
	FetchRange(ctx context.Context, kind cache.Kind, from, to time.Time) ([]cache.Record, error)
}

// Dataset binds one record kind to the strategy and remote that keep it
// fresh. Key names the strategy-metadata blob for the dataset.
type Dataset struct {
	Key      string
	Kind     cache.Kind
	Strategy RangeStrategy
	Remote   Remote
}

// Outcome reports one dataset refresh.
type Outcome struct {
	Key     string    `json:"key"`
	Success bool      `json:"success"`
	Range   DateRange `json:"range"`
	Fetched int       `json:"fetched"`
	Stored  int       `json:"stored"`
	Skipped bool      `json:"skipped,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Refresher runs incremental refreshes: strategy bounds the remote call,
// the store persists with conflict resolution, and the watermark advances
// only after everything succeeded.
type Refresher struct {
	store    *cache.Store
	metadata cache.MetadataStore
	logger   *log.Logger
	now      func() time.Time
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRefreshClock replaces the wall clock used for metadata stamps.
func WithRefreshClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

func NewRefresher(store *cache.Store, metadata cache.MetadataStore, logger *log.Logger, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:    store,
		metadata: metadata,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh brings one dataset up to date for the requested range.
func (r *Refresher) Refresh(ctx context.Context, ds Dataset, requested DateRange) Outcome {
	meta, err := r.loadMetadata(ds.Key)
	if err != nil {
		return Outcome{Key: ds.Key, Error: err.Error()}
	}

	rng := ds.Strategy.CalculateFetchRange(requested, meta)
	if rng.IsEmpty() {
		r.logger.Debug("nothing to fetch", "dataset", ds.Key)
		return Outcome{Key: ds.Key, Success: true, Skipped: true, Range: rng}
	}

	r.logger.Debug("fetching", "dataset", ds.Key, "from", rng.Start, "to", rng.End)
	records, err := ds.Remote.FetchRange(ctx, ds.Kind, rng.Start, rng.End)
	if err != nil {
		return Outcome{Key: ds.Key, Range: rng, Error: fmt.Sprintf("remote fetch: %v", err)}
	}

	stored, err := r.store.Put(ctx, records...)
	if err != nil {
		return Outcome{Key: ds.Key, Range: rng, Fetched: len(records), Error: fmt.Sprintf("storing records: %v", err)}
	}

	updated := ds.Strategy.UpdateMetadata(meta, rng, r.now())
	updated.StrategyKey = ds.Key
	if err := r.saveMetadata(updated); err != nil {
		return Outcome{Key: ds.Key, Range: rng, Fetched: len(records), Stored: stored, Error: err.Error()}
	}

	return Outcome{Key: ds.Key, Success: true, Range: rng, Fetched: len(records), Stored: stored}
}

// RefreshAll refreshes datasets concurrently, bounded by maxConcurrent.
// onComplete, when non-nil, is called once per finished dataset.
func (r *Refresher) RefreshAll(ctx context.Context, datasets []Dataset, requested DateRange, maxConcurrent int, onComplete func(Outcome)) map[string]Outcome {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	outcomes := make(map[string]Outcome, len(datasets))
	var mu sync.Mutex
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for _, ds := range datasets {
		wg.Add(1)
		go func(ds Dataset) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			outcome := r.Refresh(ctx, ds, requested)

			mu.Lock()
			outcomes[ds.Key] = outcome
			mu.Unlock()

			if onComplete != nil {
				onComplete(outcome)
			}
		}(ds)
	}

	wg.Wait()
	return outcomes
}

func (r *Refresher) loadMetadata(key string) (*Metadata, error) {
	data, err := r.metadata.Load(cache.StrategyKeyPrefix + key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata %q: %w", key, err)
	}
	return &meta, nil
}

func (r *Refresher) saveMetadata(meta Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata %q: %w", meta.StrategyKey, err)
	}
	return r.metadata.Save(cache.StrategyKeyPrefix+meta.StrategyKey, data)
}
