package dayspan

import (
	"math/rand"
	"testing"
	"time"
)

func TestLogicalDay(t *testing.T) {
	cfg := BoundaryConfig{Hour: 4, Location: time.UTC}

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"afternoon stays on its day", time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"exactly at boundary starts the new day", time.Date(2026, 1, 15, 4, 0, 0, 0, time.UTC), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"just before boundary belongs to previous day", time.Date(2026, 1, 15, 3, 59, 0, 0, time.UTC), time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)},
		{"midnight belongs to previous day", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.LogicalDay(tt.at); !got.Equal(tt.want) {
				t.Errorf("LogicalDay(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestNextBoundary(t *testing.T) {
	cfg := BoundaryConfig{Hour: 16, Location: time.UTC}

	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"morning rolls to same-day boundary", time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC), time.Date(2026, 1, 15, 16, 0, 0, 0, time.UTC)},
		{"evening rolls to next day", time.Date(2026, 1, 15, 22, 0, 0, 0, time.UTC), time.Date(2026, 1, 16, 16, 0, 0, 0, time.UTC)},
		{"exactly at boundary is strictly after", time.Date(2026, 1, 15, 16, 0, 0, 0, time.UTC), time.Date(2026, 1, 16, 16, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.NextBoundary(tt.at); !got.Equal(tt.want) {
				t.Errorf("NextBoundary(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

// The worked example: boundary hour 4, 23:00 Jan 15 through 06:00 Jan 16
// splits into exactly two segments on either side of 04:00.
func TestSplitOvernight(t *testing.T) {
	cfg := BoundaryConfig{Hour: 4, Location: time.UTC}
	start := time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 16, 6, 0, 0, 0, time.UTC)

	segments := Split(start, end, "task-1", cfg)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}

	boundary := time.Date(2026, 1, 16, 4, 0, 0, 0, time.UTC)
	if !segments[0].Start.Equal(start) || !segments[0].End.Equal(boundary) {
		t.Errorf("segment 0 = [%v, %v), want [%v, %v)", segments[0].Start, segments[0].End, start, boundary)
	}
	if !segments[0].Day.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("segment 0 day = %v, want Jan 15", segments[0].Day)
	}
	if !segments[1].Start.Equal(boundary) || !segments[1].End.Equal(end) {
		t.Errorf("segment 1 = [%v, %v), want [%v, %v)", segments[1].Start, segments[1].End, boundary, end)
	}
	if !segments[1].Day.Equal(time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("segment 1 day = %v, want Jan 16", segments[1].Day)
	}
	if segments[0].Payload != "task-1" || segments[1].Payload != "task-1" {
		t.Error("payload not carried through split")
	}
}

func TestSplitDegenerate(t *testing.T) {
	cfg := BoundaryConfig{Hour: 4, Location: time.UTC}
	at := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	if got := Split(at, at, 0, cfg); got != nil {
		t.Errorf("zero-length interval produced %d segments, want none", len(got))
	}
	if got := Split(at, at.Add(-time.Hour), 0, cfg); got != nil {
		t.Errorf("inverted interval produced %d segments, want none", len(got))
	}
}

// Property: for any interval and boundary hour, segments are contiguous,
// non-overlapping, and reconstruct the interval exactly.
func TestSplitReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		hour := rng.Intn(24)
		start := base.Add(time.Duration(rng.Intn(90*24*60)) * time.Minute)
		end := start.Add(time.Duration(1+rng.Intn(5*24*60)) * time.Minute)
		cfg := BoundaryConfig{Hour: hour, Location: time.UTC}

		segments := Split(start, end, struct{}{}, cfg)
		if len(segments) == 0 {
			t.Fatalf("hour %d [%v, %v): no segments for non-empty interval", hour, start, end)
		}

		if !segments[0].Start.Equal(start) {
			t.Fatalf("hour %d: first segment starts %v, want %v", hour, segments[0].Start, start)
		}
		if !segments[len(segments)-1].End.Equal(end) {
			t.Fatalf("hour %d: last segment ends %v, want %v", hour, segments[len(segments)-1].End, end)
		}

		var total time.Duration
		for j, seg := range segments {
			if seg.Duration() <= 0 {
				t.Fatalf("hour %d: segment %d has non-positive duration", hour, j)
			}
			if j > 0 && !seg.Start.Equal(segments[j-1].End) {
				t.Fatalf("hour %d: gap between segment %d and %d", hour, j-1, j)
			}
			if !cfg.LogicalDay(seg.Start).Equal(seg.Day) {
				t.Fatalf("hour %d: segment %d tagged %v, LogicalDay(start) = %v", hour, j, seg.Day, cfg.LogicalDay(seg.Start))
			}
			total += seg.Duration()
		}
		if total != end.Sub(start) {
			t.Fatalf("hour %d: durations sum to %v, want %v", hour, total, end.Sub(start))
		}
	}
}
