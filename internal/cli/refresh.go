package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/display"
	"github.com/daybook-app/daybook/internal/fetch"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/provider"
)

var (
	refreshFrom string
	refreshTo   string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch new data from all enabled providers",
	Long:  "Runs an incremental refresh for every enabled provider dataset. Each dataset's strategy decides how much of the requested range actually needs fetching.",
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&refreshFrom, "from", "", "Start date (YYYY-MM-DD), defaults to the configured window back from today")
	refreshCmd.Flags().StringVar(&refreshTo, "to", "", "End date (YYYY-MM-DD), defaults to today")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)
	cfg := config.Get()

	requested, err := resolveRange(cfg)
	if err != nil {
		return err
	}

	datasets := enabledDatasets(cfg)
	if len(datasets) == 0 {
		if !quiet && !jsonOutput {
			outln("No providers enabled")
			outln()
			outln("Enable one in " + config.ConfigFile() + ":")
			outln("  [providers.wiifit]")
			outln("  enabled = true")
			outln("  base_url = \"http://wii.local:8888\"")
		}
		return nil
	}

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	start := time.Now()
	refresher := fetch.NewRefresher(store, openMetadata(), logger)
	outcomes := refresher.RefreshAll(ctx, datasets, requested, cfg.Fetch.MaxConcurrent, nil)
	logger.Debug("refresh complete", "datasets", len(datasets), "duration_ms", time.Since(start).Milliseconds())

	if jsonOutput {
		return display.OutputJSON(outWriter, outcomes)
	}

	keys := make([]string, 0, len(outcomes))
	for k := range outcomes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	failed := 0
	if quiet {
		for _, k := range keys {
			o := outcomes[k]
			status := "ok"
			if o.Skipped {
				status = "skipped"
			}
			if o.Error != "" {
				status = "error"
				failed++
			}
			out("%s: %s\n", k, status)
		}
	} else {
		var rows [][]string
		for _, k := range keys {
			o := outcomes[k]
			switch {
			case o.Error != "":
				failed++
				rows = append(rows, []string{k, "error: " + o.Error, "", ""})
			case o.Skipped:
				rows = append(rows, []string{k, "up to date", "", ""})
			default:
				rows = append(rows, []string{
					k,
					o.Range.Start.Format("2006-01-02") + " to " + o.Range.End.Format("2006-01-02"),
					fmt.Sprintf("%d", o.Fetched),
					fmt.Sprintf("%d", o.Stored),
				})
			}
		}
		outln(display.NewTableWithOptions(
			[]string{"Dataset", "Range", "Fetched", "Stored"},
			rows,
			display.TableOptions{NoColor: noColor, RightAlign: []int{2, 3}},
		))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", failed, len(datasets))
	}
	return nil
}

func resolveRange(cfg config.Config) (fetch.DateRange, error) {
	now := time.Now()
	rng := fetch.DateRange{
		Start: now.AddDate(0, 0, -cfg.Fetch.DefaultWindowDays),
		End:   now,
	}
	if refreshFrom != "" {
		t, err := time.ParseInLocation("2006-01-02", refreshFrom, time.Local)
		if err != nil {
			return fetch.DateRange{}, fmt.Errorf("invalid --from date %q: %w", refreshFrom, err)
		}
		rng.Start = t
	}
	if refreshTo != "" {
		t, err := time.ParseInLocation("2006-01-02", refreshTo, time.Local)
		if err != nil {
			return fetch.DateRange{}, fmt.Errorf("invalid --to date %q: %w", refreshTo, err)
		}
		rng.End = t
	}
	if rng.End.Before(rng.Start) {
		return fetch.DateRange{}, fmt.Errorf("--to %s is before --from %s", rng.End.Format("2006-01-02"), rng.Start.Format("2006-01-02"))
	}
	return rng, nil
}

func enabledDatasets(cfg config.Config) []fetch.Dataset {
	var datasets []fetch.Dataset
	for _, id := range provider.ListIDs() {
		if !cfg.IsProviderEnabled(id) {
			continue
		}
		p, ok := provider.Get(id)
		if !ok {
			continue
		}
		pc := cfg.Provider(id)
		datasets = append(datasets, p.Datasets(provider.Settings{
			BaseURL: pc.BaseURL,
			Token:   pc.Token,
			Timeout: cfg.Fetch.Timeout,
		})...)
	}
	return datasets
}
