// Package analytics derives statistics from ordered (date, value) series.
// Everything here is pure; callers pass data already read from the cache.
package analytics

import (
	"sort"
	"time"
)

// Point is one dated sample.
type Point struct {
	Date  time.Time
	Value float64
}

// Trend compares the average of the most recent window against the window
// immediately before it and returns the change as a percentage. The window
// is min(7, n/2) points. Returns nil when the series has fewer than 7
// points or the previous window's average is zero. This is a fixed-lookback
// comparison, deliberately simpler and more gap-tolerant than a regression.
func Trend(points []Point) *float64 {
	n := len(points)
	if n < 7 {
		return nil
	}

	window := n / 2
	if window > 7 {
		window = 7
	}

	recent := points[n-window:]
	previous := points[n-2*window : n-window]

	prevAvg := average(previous)
	if prevAvg == 0 {
		return nil
	}
	recentAvg := average(recent)

	pct := (recentAvg - prevAvg) / prevAvg * 100
	return &pct
}

// GapPolicy selects how MovingAverage treats missing calendar days.
type GapPolicy int

const (
	// GapSkip averages only the points that exist; calendar gaps are
	// invisible. Used for sparse measurement series (weight, ratings).
	GapSkip GapPolicy = iota

	// GapZeroFill inserts a zero-valued point for every missing calendar
	// day before averaging, so inactive days drag the average down instead
	// of disappearing. Used for duration-style series.
	GapZeroFill
)

// MovingAverage returns, for each position in the date-sorted series, the
// mean of the trailing window points ending there. Positions earlier than a
// full window average whatever is available.
func MovingAverage(points []Point, window int, policy GapPolicy) []Point {
	if window <= 0 || len(points) == 0 {
		return nil
	}

	series := sortedByDate(points)
	if policy == GapZeroFill {
		series = zeroFill(series)
	}

	out := make([]Point, len(series))
	var sum float64
	for i, p := range series {
		sum += p.Value
		if i >= window {
			sum -= series[i-window].Value
		}
		count := i + 1
		if count > window {
			count = window
		}
		out[i] = Point{Date: p.Date, Value: sum / float64(count)}
	}
	return out
}

// ActivityDays normalizes a series into per-day intensities in [0, 1],
// dividing each value by the series maximum. All-zero input yields zero
// intensities.
func ActivityDays(points []Point) []Point {
	var max float64
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}

	out := make([]Point, len(points))
	for i, p := range points {
		intensity := 0.0
		if max > 0 {
			intensity = p.Value / max
		}
		if intensity < 0 {
			intensity = 0
		}
		if intensity > 1 {
			intensity = 1
		}
		out[i] = Point{Date: p.Date, Value: intensity}
	}
	return out
}

func average(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum / float64(len(points))
}

func sortedByDate(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// zeroFill expands a date-sorted series so every calendar day between the
// first and last sample has a point, inserting zeros for the gaps.
func zeroFill(series []Point) []Point {
	if len(series) < 2 {
		return series
	}

	out := make([]Point, 0, len(series))
	out = append(out, series[0])
	for i := 1; i < len(series); i++ {
		prev := out[len(out)-1].Date
		for d := nextDay(prev); d.Before(startOfDay(series[i].Date)); d = nextDay(d) {
			out = append(out, Point{Date: d})
		}
		out = append(out, series[i])
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1)
}
