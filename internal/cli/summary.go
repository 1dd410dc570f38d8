package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/aggregate"
	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/dayspan"
	"github.com/daybook-app/daybook/internal/display"
	"github.com/daybook-app/daybook/internal/models"
	"github.com/daybook-app/daybook/internal/records"
)

var (
	summaryKind string
	summaryDays int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-day session summaries",
	Long:  "Buckets tracked sessions into logical days. Days roll over at the configured boundary hour, not midnight, so late-night activity counts toward the evening's day.",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryKind, "kind", "task", "Session kind: task, sleep or location")
	summaryCmd.Flags().IntVar(&summaryDays, "days", 7, "How many days back to summarize")
}

type summaryJSON struct {
	Day      string         `json:"day"`
	Minutes  int            `json:"minutes"`
	Dominant string         `json:"dominant,omitempty"`
	ByEntity map[string]int `json:"by_entity"`
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	kind, boundaryHour, hasDominant, err := summaryTarget(cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	now := time.Now()
	from := now.AddDate(0, 0, -summaryDays)
	recs, err := store.FetchRange(cmd.Context(), kind, &from, nil)
	if err != nil {
		return err
	}

	sessions := make([]aggregate.Session, 0, len(recs))
	for _, rec := range recs {
		if s, ok := sessionFromPayload(rec.Payload); ok {
			sessions = append(sessions, s)
		}
	}

	boundary := dayspan.BoundaryConfig{Hour: boundaryHour}
	summaries := aggregate.Summarize(sessions, boundary, now)
	window := aggregate.ActiveWindow{
		StartHour: cfg.Boundaries.ActiveStartHour,
		EndHour:   cfg.Boundaries.ActiveEndHour,
	}

	if jsonOutput {
		payload := make([]summaryJSON, 0, len(summaries))
		for _, s := range summaries {
			entry := summaryJSON{
				Day:      s.Day.Format("2006-01-02"),
				Minutes:  int(s.Total.Minutes()),
				ByEntity: make(map[string]int, len(s.ByEntity)),
			}
			for entity, dur := range s.ByEntity {
				entry.ByEntity[entity] = int(dur.Minutes())
			}
			if hasDominant {
				if dom, ok := s.Dominant(window); ok {
					entry.Dominant = dom
				}
			}
			payload = append(payload, entry)
		}
		return display.OutputJSON(outWriter, payload)
	}

	if len(summaries) == 0 {
		if !quiet {
			outln("No sessions in the last", summaryDays, "days")
		}
		return nil
	}

	if quiet {
		for _, s := range summaries {
			out("%s: %s\n", s.Day.Format("2006-01-02"), display.FormatDuration(s.Total))
		}
		return nil
	}

	headers := []string{"Day", "Total"}
	if hasDominant {
		headers = append(headers, "Dominant")
	}
	var rows [][]string
	for _, s := range summaries {
		row := []string{display.FormatDay(s.Day), display.FormatDuration(s.Total)}
		if hasDominant {
			dom, ok := s.Dominant(window)
			if !ok {
				dom = "-"
			}
			row = append(row, dom)
		}
		rows = append(rows, row)
	}
	outln(display.NewTableWithOptions(headers, rows, display.TableOptions{
		Title:   summaryKind + " sessions",
		NoColor: noColor,
	}))
	return nil
}

func summaryTarget(cfg config.Config) (cache.Kind, int, bool, error) {
	switch summaryKind {
	case "task":
		return records.KindTaskSession, cfg.Boundaries.TaskHour, true, nil
	case "sleep":
		return records.KindSleepSession, cfg.Boundaries.SleepHour, false, nil
	case "location":
		return records.KindLocationVisit, cfg.Boundaries.TaskHour, true, nil
	default:
		return cache.Kind{}, 0, false, fmt.Errorf("unknown kind %q: expected task, sleep or location", summaryKind)
	}
}

func sessionFromPayload(payload any) (aggregate.Session, bool) {
	switch p := payload.(type) {
	case models.TaskSession:
		return aggregate.Session{EntityID: p.TaskID, Start: p.Start, End: p.End}, true
	case models.SleepSession:
		return aggregate.Session{EntityID: "sleep", Start: p.Start, End: p.End}, true
	case models.LocationVisit:
		return aggregate.Session{EntityID: p.LocationID, Start: p.Start, End: p.End}, true
	default:
		return aggregate.Session{}, false
	}
}
