package fetch

import (
	"testing"
	"time"
)

func jan(d int) time.Time {
	return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestDateBasedStrategyCalculateFetchRange(t *testing.T) {
	strategy := DateBasedStrategy{VolatileWindowDays: 1, Location: time.UTC}
	requested := DateRange{Start: jan(1), End: jan(10)}

	tests := []struct {
		name      string
		meta      *Metadata
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"no metadata fetches full range", nil, jan(1), jan(10)},
		{"zero watermark fetches full range", &Metadata{}, jan(1), jan(10)},
		// The end-to-end scenario: cached through Jan 5, volatile window 1
		// day, so only Jan 4 onward is re-fetched.
		{"watermark shrinks the range", &Metadata{LastFetchDate: jan(5)}, jan(4), jan(10)},
		{"watermark before requested start is ignored", &Metadata{LastFetchDate: jan(1)}, jan(1), jan(10)},
		{"watermark at end leaves only the volatile tail", &Metadata{LastFetchDate: jan(10)}, jan(9), jan(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strategy.CalculateFetchRange(requested, tt.meta)
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("CalculateFetchRange() = [%v, %v], want [%v, %v]",
					got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

// A more recent watermark never widens the computed range.
func TestDateBasedStrategyMonotonicShrink(t *testing.T) {
	strategy := DateBasedStrategy{VolatileWindowDays: 1, Location: time.UTC}
	requested := DateRange{Start: jan(1), End: jan(20)}

	prevStart := time.Time{}
	for d := 2; d <= 20; d++ {
		got := strategy.CalculateFetchRange(requested, &Metadata{LastFetchDate: jan(d)})
		if !prevStart.IsZero() && got.Start.Before(prevStart) {
			t.Fatalf("watermark %v widened range start to %v (previous %v)", jan(d), got.Start, prevStart)
		}
		if !got.End.Equal(jan(20)) {
			t.Fatalf("watermark %v moved range end to %v", jan(d), got.End)
		}
		prevStart = got.Start
	}
}

func TestDateBasedStrategyDayTruncation(t *testing.T) {
	strategy := DateBasedStrategy{VolatileWindowDays: 1, Location: time.UTC}
	requested := DateRange{
		Start: time.Date(2026, 1, 3, 14, 30, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 8, 9, 15, 0, 0, time.UTC),
	}

	got := strategy.CalculateFetchRange(requested, nil)
	if !got.Start.Equal(jan(3)) || !got.End.Equal(jan(8)) {
		t.Errorf("range not day-aligned: [%v, %v]", got.Start, got.End)
	}
}

func TestDateBasedStrategyUpdateMetadata(t *testing.T) {
	strategy := DateBasedStrategy{VolatileWindowDays: 1, Location: time.UTC}
	fetched := DateRange{Start: jan(4), End: time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)}

	meta := strategy.UpdateMetadata(nil, fetched, jan(11))
	if !meta.LastFetchDate.Equal(jan(10)) {
		t.Errorf("LastFetchDate = %v, want day-truncated fetch end %v", meta.LastFetchDate, jan(10))
	}

	prev := &Metadata{StrategyKey: "studylog.effort", LastFetchDate: jan(5)}
	meta = strategy.UpdateMetadata(prev, fetched, jan(11))
	if meta.StrategyKey != "studylog.effort" {
		t.Errorf("StrategyKey = %q, want carried over", meta.StrategyKey)
	}
	if !meta.LastFetchDate.Equal(jan(10)) {
		t.Errorf("LastFetchDate = %v, want %v", meta.LastFetchDate, jan(10))
	}
}

func TestAlwaysFetchRecentStrategy(t *testing.T) {
	strategy := AlwaysFetchRecentStrategy{RecentDays: 7, Location: time.UTC}

	tests := []struct {
		name      string
		requested DateRange
		meta      *Metadata
		wantStart time.Time
	}{
		{"wide request clamps to recent days", DateRange{Start: jan(1), End: jan(20)}, nil, jan(13)},
		{"metadata is ignored", DateRange{Start: jan(1), End: jan(20)}, &Metadata{LastFetchDate: jan(19)}, jan(13)},
		{"narrow request keeps its start", DateRange{Start: jan(18), End: jan(20)}, nil, jan(18)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strategy.CalculateFetchRange(tt.requested, tt.meta)
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("range start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.requested.End) {
				t.Errorf("range end = %v, want %v", got.End, tt.requested.End)
			}
		})
	}

	meta := strategy.UpdateMetadata(nil, DateRange{Start: jan(13), End: jan(20)}, jan(21))
	if !meta.LastFetchDate.IsZero() {
		t.Errorf("UpdateMetadata should be a no-op, got LastFetchDate %v", meta.LastFetchDate)
	}
}

func TestMissingDateRanges(t *testing.T) {
	cached := func(days ...int) map[time.Time]struct{} {
		m := make(map[time.Time]struct{}, len(days))
		for _, d := range days {
			m[jan(d)] = struct{}{}
		}
		return m
	}

	tests := []struct {
		name   string
		from   time.Time
		to     time.Time
		cached map[time.Time]struct{}
		want   []DateRange
	}{
		{"nothing cached", jan(1), jan(3), nil, []DateRange{{jan(1), jan(3)}}},
		{"everything cached", jan(1), jan(3), cached(1, 2, 3), nil},
		{"gap in the middle merges adjacent days", jan(1), jan(7), cached(1, 2, 6, 7), []DateRange{{jan(3), jan(5)}}},
		{"multiple gaps", jan(1), jan(7), cached(2, 5), []DateRange{{jan(1), jan(1)}, {jan(3), jan(4)}, {jan(6), jan(7)}}},
		{"inverted range", jan(5), jan(1), nil, nil},
		{"single missing day", jan(4), jan(4), nil, []DateRange{{jan(4), jan(4)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingDateRanges(tt.from, tt.to, tt.cached, time.UTC)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d ranges %v, want %d", len(got), got, len(tt.want))
			}
			for i, w := range tt.want {
				if !got[i].Start.Equal(w.Start) || !got[i].End.Equal(w.End) {
					t.Errorf("range %d = [%v, %v], want [%v, %v]", i, got[i].Start, got[i].End, w.Start, w.End)
				}
			}
		})
	}
}
