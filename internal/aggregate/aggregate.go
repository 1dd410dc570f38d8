// Package aggregate turns session records into per-logical-day summaries.
package aggregate

import (
	"sort"
	"time"

	"github.com/daybook-app/daybook/internal/dayspan"
)

// Session is the aggregator's input shape: any entity-tagged interval. A
// nil End marks a session still in progress; its duration runs up to the
// caller-supplied reference time, never an implicit wall-clock read.
type Session struct {
	EntityID string
	Start    time.Time
	End      *time.Time
}

// DaySummary is one logical day's totals. Summaries are computed, consumed
// and discarded; when an ongoing session contributes, the summary must be
// recomputed whenever the reference time advances.
type DaySummary struct {
	Day      time.Time
	Total    time.Duration
	ByEntity map[string]time.Duration
	Segments []dayspan.Segment[string]
}

// ActiveWindow restricts dominant-entity scoring to a portion of the
// calendar day, e.g. 6:00-24:00 so overnight hours don't skew which place
// "owned" the day.
type ActiveWindow struct {
	StartHour int
	EndHour   int // 24 means end of day
}

// Summarize splits each session across logical-day boundaries and buckets
// segment durations per (day, entity). Sessions whose effective end does
// not reach their start contribute nothing. Results are sorted by day.
func Summarize(sessions []Session, cfg dayspan.BoundaryConfig, reference time.Time) []DaySummary {
	byDay := make(map[time.Time]*DaySummary)

	for _, s := range sessions {
		end := reference
		if s.End != nil {
			end = *s.End
		}
		for _, seg := range dayspan.Split(s.Start, end, s.EntityID, cfg) {
			summary, ok := byDay[seg.Day]
			if !ok {
				summary = &DaySummary{
					Day:      seg.Day,
					ByEntity: make(map[string]time.Duration),
				}
				byDay[seg.Day] = summary
			}
			summary.Total += seg.Duration()
			summary.ByEntity[seg.Payload] += seg.Duration()
			summary.Segments = append(summary.Segments, seg)
		}
	}

	out := make([]DaySummary, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})
	return out
}

// TotalFor returns one entity's bucketed duration for the day.
func (s DaySummary) TotalFor(entityID string) time.Duration {
	return s.ByEntity[entityID]
}

// Dominant returns the entity with the most time inside the active window
// on this day. Equal durations resolve to the lexicographically smaller
// entity ID so the result is deterministic. Returns false when nothing
// overlaps the window.
func (s DaySummary) Dominant(w ActiveWindow) (string, bool) {
	windowStart := s.Day.Add(time.Duration(w.StartHour) * time.Hour)
	windowEnd := s.Day.Add(time.Duration(w.EndHour) * time.Hour)

	totals := make(map[string]time.Duration)
	for _, seg := range s.Segments {
		start := seg.Start
		if start.Before(windowStart) {
			start = windowStart
		}
		end := seg.End
		if end.After(windowEnd) {
			end = windowEnd
		}
		if end.After(start) {
			totals[seg.Payload] += end.Sub(start)
		}
	}

	var best string
	var bestDur time.Duration
	found := false
	for entity, dur := range totals {
		switch {
		case !found, dur > bestDur:
			best, bestDur, found = entity, dur, true
		case dur == bestDur && entity < best:
			best = entity
		}
	}
	return best, found
}
