// Package dayspan assigns timestamps and time intervals to logical days.
// A logical day is a 24-hour bucket whose boundary is an arbitrary hour of
// day rather than midnight: with a boundary hour of 4, activity between
// midnight and 04:00 still counts toward the previous day, and with a
// boundary hour of 16 an overnight sleep session stays grouped with the day
// it started.
package dayspan

import "time"

// BoundaryConfig defines where a logical day starts. Hour is in [0, 23];
// a nil Location means time.Local.
type BoundaryConfig struct {
	Hour     int
	Location *time.Location
}

func (c BoundaryConfig) location() *time.Location {
	if c.Location != nil {
		return c.Location
	}
	return time.Local
}

// LogicalDay returns the start-of-calendar-day timestamp of the logical day
// t belongs to. Times before the boundary hour map to the previous
// calendar day.
func (c BoundaryConfig) LogicalDay(t time.Time) time.Time {
	t = t.In(c.location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.location())
	if t.Hour() < c.Hour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// NextBoundary returns the next timestamp at the boundary hour strictly
// after t.
func (c BoundaryConfig) NextBoundary(t time.Time) time.Time {
	t = t.In(c.location())
	next := time.Date(t.Year(), t.Month(), t.Day(), c.Hour, 0, 0, 0, c.location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Segment is the portion of an interval confined to a single logical day.
type Segment[P any] struct {
	Day     time.Time
	Start   time.Time
	End     time.Time
	Payload P
}

func (s Segment[P]) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Split cuts [start, end) into one segment per logical day. Segments are
// contiguous, non-overlapping, and their union reconstructs the input
// interval exactly. Degenerate input (end <= start) yields no segments.
func Split[P any](start, end time.Time, payload P, cfg BoundaryConfig) []Segment[P] {
	if !end.After(start) {
		return nil
	}

	var segments []Segment[P]
	current := start
	for current.Before(end) {
		segmentEnd := cfg.NextBoundary(current)
		if segmentEnd.After(end) {
			segmentEnd = end
		}
		segments = append(segments, Segment[P]{
			Day:     cfg.LogicalDay(current),
			Start:   current,
			End:     segmentEnd,
			Payload: payload,
		})
		current = segmentEnd
	}
	return segments
}
