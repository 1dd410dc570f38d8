package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/analytics"
	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/display"
	"github.com/daybook-app/daybook/internal/models"
	"github.com/daybook-app/daybook/internal/records"
)

var (
	trendKind     string
	trendDays     int
	trendWindow   int
	trendZeroFill bool
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show trend and moving average for a metric",
	Long:  "Computes the recent-vs-previous trend percentage and a trailing moving average for one metric series. Duration-style metrics zero-fill missing days by default; measurement-style metrics skip them.",
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendKind, "kind", "effort", "Metric: effort, intensity, weight, calories or rating")
	trendCmd.Flags().IntVar(&trendDays, "days", 30, "How many days back to include")
	trendCmd.Flags().IntVar(&trendWindow, "window", 7, "Moving-average window in points")
	trendCmd.Flags().BoolVar(&trendZeroFill, "zero-fill", false, "Force zero-filling of missing days")
}

type trendJSON struct {
	Kind     string      `json:"kind"`
	TrendPct *float64    `json:"trend_pct"`
	Series   []pointJSON `json:"series"`
	Average  []pointJSON `json:"moving_average"`
}

type pointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func runTrend(cmd *cobra.Command, args []string) error {
	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	now := time.Now()
	from := now.AddDate(0, 0, -trendDays)
	points, policy, err := loadSeries(cmd, store, from)
	if err != nil {
		return err
	}
	if trendZeroFill {
		policy = analytics.GapZeroFill
	}

	trendPct := analytics.Trend(points)
	averaged := analytics.MovingAverage(points, trendWindow, policy)

	if jsonOutput {
		payload := trendJSON{Kind: trendKind, TrendPct: trendPct}
		for _, p := range points {
			payload.Series = append(payload.Series, pointJSON{Date: p.Date.Format("2006-01-02"), Value: p.Value})
		}
		for _, p := range averaged {
			payload.Average = append(payload.Average, pointJSON{Date: p.Date.Format("2006-01-02"), Value: p.Value})
		}
		return display.OutputJSON(outWriter, payload)
	}

	if len(points) == 0 {
		if !quiet {
			outln("No data for", trendKind, "in the last", trendDays, "days")
		}
		return nil
	}

	if quiet {
		out("%s trend: %s\n", trendKind, display.FormatTrend(trendPct))
		return nil
	}

	avgByDate := make(map[string]float64, len(averaged))
	for _, p := range averaged {
		avgByDate[p.Date.Format("2006-01-02")] = p.Value
	}

	var rows [][]string
	for _, p := range points {
		key := p.Date.Format("2006-01-02")
		rows = append(rows, []string{
			display.FormatDay(p.Date),
			display.FormatValue(p.Value),
			display.FormatValue(avgByDate[key]),
		})
	}
	outln(display.NewTableWithOptions(
		[]string{"Day", "Value", "Avg"},
		rows,
		display.TableOptions{
			Title:      fmt.Sprintf("%s (trend %s)", trendKind, display.FormatTrend(trendPct)),
			NoColor:    noColor,
			RightAlign: []int{1, 2},
		},
	))
	return nil
}

// loadSeries builds one Point per day for the selected metric. Each metric
// carries the gap policy appropriate to its shape.
func loadSeries(cmd *cobra.Command, store *cache.Store, from time.Time) ([]analytics.Point, analytics.GapPolicy, error) {
	ctx := cmd.Context()

	switch trendKind {
	case "effort":
		recs, err := store.FetchRange(ctx, records.KindDailyEffort, &from, nil)
		if err != nil {
			return nil, 0, err
		}
		var points []analytics.Point
		for _, rec := range recs {
			e := rec.Payload.(models.DailyEffort)
			points = append(points, analytics.Point{Date: e.Day, Value: float64(e.Minutes)})
		}
		return points, analytics.GapZeroFill, nil

	case "intensity":
		recs, err := store.FetchRange(ctx, records.KindDailyEffort, &from, nil)
		if err != nil {
			return nil, 0, err
		}
		var points []analytics.Point
		for _, rec := range recs {
			e := rec.Payload.(models.DailyEffort)
			points = append(points, analytics.Point{Date: e.Day, Value: float64(e.Minutes)})
		}
		return analytics.ActivityDays(points), analytics.GapZeroFill, nil

	case "weight":
		recs, err := store.FetchRange(ctx, records.KindBodyMeasurement, &from, nil)
		if err != nil {
			return nil, 0, err
		}
		// Several readings can land on one day; the last one wins.
		byDay := make(map[time.Time]float64)
		for _, rec := range recs {
			m := rec.Payload.(models.BodyMeasurement)
			byDay[dayOf(m.TakenAt)] = m.WeightKg
		}
		return pointsFromDayMap(byDay), analytics.GapSkip, nil

	case "calories":
		recs, err := store.FetchRange(ctx, records.KindFitActivity, &from, nil)
		if err != nil {
			return nil, 0, err
		}
		byDay := make(map[time.Time]float64)
		for _, rec := range recs {
			a := rec.Payload.(models.FitActivity)
			byDay[dayOf(a.Date)] += float64(a.Calories)
		}
		return pointsFromDayMap(byDay), analytics.GapZeroFill, nil

	case "rating":
		recs, err := store.FetchRange(ctx, records.KindContestResult, &from, nil)
		if err != nil {
			return nil, 0, err
		}
		byDay := make(map[time.Time]float64)
		for _, rec := range recs {
			r := rec.Payload.(models.ContestResult)
			byDay[dayOf(r.Date)] += float64(r.RatingDelta)
		}
		return pointsFromDayMap(byDay), analytics.GapSkip, nil

	default:
		return nil, 0, fmt.Errorf("unknown metric %q: expected effort, intensity, weight, calories or rating", trendKind)
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func pointsFromDayMap(byDay map[time.Time]float64) []analytics.Point {
	points := make([]analytics.Point, 0, len(byDay))
	for day, v := range byDay {
		points = append(points, analytics.Point{Date: day, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
