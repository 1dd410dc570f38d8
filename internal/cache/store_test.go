package cache

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"
)

type effortPayload struct {
	Day     time.Time `json:"day"`
	Minutes int       `json:"minutes"`
}

func effortDescriptor() Descriptor {
	return Descriptor{
		Kind:       Kind{Source: SourceStudyLog, Name: "daily-effort"},
		Identity:   func(p any) string { return p.(effortPayload).Day.UTC().Format("2006-01-02") },
		RecordDate: func(p any) time.Time { return p.(effortPayload).Day },
		Decode: func(data []byte) (any, error) {
			var p effortPayload
			if err := json.Unmarshal(data, &p); err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

func newTestStore(t *testing.T, now *time.Time) (*Store, Kind) {
	t.Helper()
	desc := effortDescriptor()
	store := NewStore(NewMemoryBackend(), NewRegistry(desc), WithClock(func() time.Time { return *now }))
	return store, desc.Kind
}

func day(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestPutIdempotent(t *testing.T) {
	now := day(20)
	store, kind := newTestStore(t, &now)
	ctx := context.Background()
	desc := effortDescriptor()

	rec := desc.Wrap(effortPayload{Day: day(5), Minutes: 30})

	written, err := store.Put(ctx, rec)
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if written != 1 {
		t.Errorf("first Put wrote %d, want 1", written)
	}

	// Same clock value: the tie keeps the existing entry.
	written, err = store.Put(ctx, desc.Wrap(effortPayload{Day: day(5), Minutes: 99}))
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if written != 0 {
		t.Errorf("second Put wrote %d, want 0", written)
	}

	got, err := store.FetchOne(ctx, kind, rec.Identity)
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if got.Payload.(effortPayload).Minutes != 30 {
		t.Errorf("tie overwrote payload: got %d minutes, want 30", got.Payload.(effortPayload).Minutes)
	}
}

func TestPutLastWriterWins(t *testing.T) {
	now := day(20)
	store, kind := newTestStore(t, &now)
	ctx := context.Background()
	desc := effortDescriptor()

	if _, err := store.Put(ctx, desc.Wrap(effortPayload{Day: day(5), Minutes: 30})); err != nil {
		t.Fatalf("Put t1: %v", err)
	}

	now = day(21)
	if _, err := store.Put(ctx, desc.Wrap(effortPayload{Day: day(5), Minutes: 45})); err != nil {
		t.Fatalf("Put t2: %v", err)
	}

	got, err := store.FetchOne(ctx, kind, "2026-01-05")
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if minutes := got.Payload.(effortPayload).Minutes; minutes != 45 {
		t.Errorf("got %d minutes, want latest write 45", minutes)
	}

	// A write with an older clock is discarded, not an error.
	now = day(19)
	written, err := store.Put(ctx, desc.Wrap(effortPayload{Day: day(5), Minutes: 10}))
	if err != nil {
		t.Fatalf("stale Put: %v", err)
	}
	if written != 0 {
		t.Errorf("stale Put wrote %d, want 0", written)
	}
}

func TestFetchRange(t *testing.T) {
	now := day(25)
	store, kind := newTestStore(t, &now)
	ctx := context.Background()
	desc := effortDescriptor()

	rng := rand.New(rand.NewSource(7))
	days := rng.Perm(20)
	for _, d := range days {
		if _, err := store.Put(ctx, desc.Wrap(effortPayload{Day: day(d + 1), Minutes: d})); err != nil {
			t.Fatalf("Put day %d: %v", d+1, err)
		}
	}

	from, to := day(5), day(12)
	got, err := store.FetchRange(ctx, kind, &from, &to)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("got %d records, want 8 (inclusive bounds)", len(got))
	}
	for i, rec := range got {
		want := day(5 + i)
		if !rec.RecordDate.Equal(want) {
			t.Errorf("record %d date = %v, want %v (ascending)", i, rec.RecordDate, want)
		}
	}

	// Unbounded on both sides returns everything.
	all, err := store.FetchRange(ctx, kind, nil, nil)
	if err != nil {
		t.Fatalf("FetchRange unbounded: %v", err)
	}
	if len(all) != 20 {
		t.Errorf("unbounded fetch got %d records, want 20", len(all))
	}
}

func TestFetchOneNotFound(t *testing.T) {
	now := day(1)
	store, kind := newTestStore(t, &now)

	_, err := store.FetchOne(context.Background(), kind, "2026-01-09")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("FetchOne on empty store: err = %v, want ErrNotFound", err)
	}
}

func TestUnsupportedKind(t *testing.T) {
	now := day(1)
	store, _ := newTestStore(t, &now)
	ctx := context.Background()
	unknown := Kind{Source: SourceArena, Name: "no-such-kind"}

	if _, err := store.FetchRange(ctx, unknown, nil, nil); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("FetchRange: err = %v, want ErrUnsupportedKind", err)
	}
	if _, err := store.Put(ctx, Record{Kind: unknown, Identity: "x"}); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("Put: err = %v, want ErrUnsupportedKind", err)
	}
	if err := store.DeleteAll(ctx, unknown); !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("DeleteAll: err = %v, want ErrUnsupportedKind", err)
	}
}

func TestBoundsAndCount(t *testing.T) {
	now := day(25)
	store, kind := newTestStore(t, &now)
	ctx := context.Background()
	desc := effortDescriptor()

	earliest, err := store.EarliestRecordDate(ctx, kind)
	if err != nil {
		t.Fatalf("EarliestRecordDate: %v", err)
	}
	if earliest != nil {
		t.Errorf("earliest on empty store = %v, want nil", earliest)
	}

	for _, d := range []int{3, 9, 6} {
		if _, err := store.Put(ctx, desc.Wrap(effortPayload{Day: day(d)})); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	earliest, _ = store.EarliestRecordDate(ctx, kind)
	latest, _ := store.LatestRecordDate(ctx, kind)
	if earliest == nil || !earliest.Equal(day(3)) {
		t.Errorf("earliest = %v, want %v", earliest, day(3))
	}
	if latest == nil || !latest.Equal(day(9)) {
		t.Errorf("latest = %v, want %v", latest, day(9))
	}

	n, err := store.Count(ctx, kind)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
	has, _ := store.HasData(ctx, kind)
	if !has {
		t.Error("HasData = false, want true")
	}
}

func TestDeleteAndPrune(t *testing.T) {
	now := day(25)
	store, kind := newTestStore(t, &now)
	ctx := context.Background()
	desc := effortDescriptor()

	for d := 1; d <= 10; d++ {
		if _, err := store.Put(ctx, desc.Wrap(effortPayload{Day: day(d)})); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	if err := store.Delete(ctx, kind, "2026-01-10"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, kind, "2026-01-10"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete: err = %v, want ErrNotFound", err)
	}

	if err := store.DeleteOlderThan(ctx, kind, day(5)); err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	n, _ := store.Count(ctx, kind)
	if n != 5 {
		t.Errorf("after pruning before day 5: Count = %d, want 5 (days 5-9)", n)
	}

	if err := store.DeleteAll(ctx, kind); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	has, _ := store.HasData(ctx, kind)
	if has {
		t.Error("HasData after DeleteAll = true, want false")
	}
}
