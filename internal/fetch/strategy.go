package fetch

import "time"

// DateRange is an inclusive day-aligned range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsEmpty reports whether the range covers nothing.
func (r DateRange) IsEmpty() bool {
	return r.End.Before(r.Start)
}

// Metadata is the per-dataset watermark a strategy persists between runs.
// It is only written after the caller confirms a fetch succeeded, so a
// failed or partial remote call never corrupts it.
type Metadata struct {
	StrategyKey   string    `json:"strategy_key"`
	LastFetchDate time.Time `json:"last_fetch_date"`
}

// RangeStrategy decides how much of a requested range must actually be
// fetched from the remote collaborator, and how the watermark advances
// after a successful fetch. Implementations are pure; both methods must
// tolerate a nil previous metadata.
type RangeStrategy interface {
	CalculateFetchRange(requested DateRange, meta *Metadata) DateRange
	UpdateMetadata(prev *Metadata, fetched DateRange, fetchedAt time.Time) Metadata
}

// StartOfDay truncates t to midnight in loc (time.Local when nil). All
// strategy ranges are whole-day-aligned to avoid partial-day gaps.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DateBasedStrategy serves sources whose past data is immutable once
// finalized (console exports, study statistics). Only the trailing volatile
// window behind the watermark is re-fetched; everything older is assumed
// already cached.
type DateBasedStrategy struct {
	// VolatileWindowDays is how many days behind the watermark may still
	// change remotely. Values below 1 fall back to 1.
	VolatileWindowDays int
	Location           *time.Location
}

func (s DateBasedStrategy) volatileDays() int {
	if s.VolatileWindowDays < 1 {
		return 1
	}
	return s.VolatileWindowDays
}

func (s DateBasedStrategy) CalculateFetchRange(requested DateRange, meta *Metadata) DateRange {
	start := StartOfDay(requested.Start, s.Location)
	end := StartOfDay(requested.End, s.Location)

	if meta == nil || meta.LastFetchDate.IsZero() {
		return DateRange{Start: start, End: end}
	}

	volatileStart := StartOfDay(meta.LastFetchDate, s.Location).AddDate(0, 0, -s.volatileDays())
	if volatileStart.After(start) {
		start = volatileStart
	}
	return DateRange{Start: start, End: end}
}

func (s DateBasedStrategy) UpdateMetadata(prev *Metadata, fetched DateRange, _ time.Time) Metadata {
	meta := Metadata{}
	if prev != nil {
		meta = *prev
	}
	meta.LastFetchDate = StartOfDay(fetched.End, s.Location)
	return meta
}

// AlwaysFetchRecentStrategy serves sources whose recent entries get edited
// after the fact (contest results). It is stateless: the trailing
// RecentDays of the requested range are re-fetched on every call and the
// metadata never changes.
type AlwaysFetchRecentStrategy struct {
	RecentDays int
	Location   *time.Location
}

func (s AlwaysFetchRecentStrategy) CalculateFetchRange(requested DateRange, _ *Metadata) DateRange {
	start := StartOfDay(requested.Start, s.Location)
	end := StartOfDay(requested.End, s.Location)

	recentStart := end.AddDate(0, 0, -s.RecentDays)
	if recentStart.After(start) {
		start = recentStart
	}
	return DateRange{Start: start, End: end}
}

func (s AlwaysFetchRecentStrategy) UpdateMetadata(prev *Metadata, _ DateRange, _ time.Time) Metadata {
	if prev != nil {
		return *prev
	}
	return Metadata{}
}

// MissingDateRanges computes the maximal contiguous day-ranges inside
// [from, to] that are not covered by cachedDates, merging adjacent missing
// days. Used by sources that track staleness per day instead of with a
// single watermark. Keys in cachedDates must be start-of-day timestamps.
func MissingDateRanges(from, to time.Time, cachedDates map[time.Time]struct{}, loc *time.Location) []DateRange {
	start := StartOfDay(from, loc)
	end := StartOfDay(to, loc)
	if end.Before(start) {
		return nil
	}

	// Normalize cached keys so callers in other zones line up.
	cached := make(map[time.Time]struct{}, len(cachedDates))
	for d := range cachedDates {
		cached[StartOfDay(d, loc)] = struct{}{}
	}

	var ranges []DateRange
	var current *DateRange
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if _, ok := cached[d]; ok {
			current = nil
			continue
		}
		if current == nil {
			ranges = append(ranges, DateRange{Start: d, End: d})
			current = &ranges[len(ranges)-1]
		} else {
			current.End = d
		}
	}

	return ranges
}
