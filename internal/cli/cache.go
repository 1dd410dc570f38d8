package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/display"
	"github.com/daybook-app/daybook/internal/records"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local record store",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show record counts and date bounds per kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		type kindStatus struct {
			Count    int    `json:"count"`
			Earliest string `json:"earliest,omitempty"`
			Latest   string `json:"latest,omitempty"`
		}

		registry := records.NewRegistry()
		statuses := make(map[string]kindStatus)
		for _, kind := range registry.Kinds() {
			count, err := store.Count(ctx, kind)
			if err != nil {
				return err
			}
			status := kindStatus{Count: count}
			if earliest, err := store.EarliestRecordDate(ctx, kind); err == nil && earliest != nil {
				status.Earliest = earliest.Format("2006-01-02")
			}
			if latest, err := store.LatestRecordDate(ctx, kind); err == nil && latest != nil {
				status.Latest = latest.Format("2006-01-02")
			}
			statuses[kind.String()] = status
		}

		if jsonOutput {
			return display.OutputJSON(outWriter, statuses)
		}

		if quiet {
			for _, kind := range registry.Kinds() {
				out("%s: %d\n", kind, statuses[kind.String()].Count)
			}
			return nil
		}

		var rows [][]string
		for _, kind := range registry.Kinds() {
			s := statuses[kind.String()]
			earliest, latest := s.Earliest, s.Latest
			if earliest == "" {
				earliest = "-"
			}
			if latest == "" {
				latest = "-"
			}
			rows = append(rows, []string{kind.String(), fmt.Sprintf("%d", s.Count), earliest, latest})
		}
		outln(display.NewTableWithOptions(
			[]string{"Kind", "Records", "Earliest", "Latest"},
			rows,
			display.TableOptions{NoColor: noColor, RightAlign: []int{1}},
		))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached records and strategy metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		for _, kind := range records.NewRegistry().Kinds() {
			if err := store.DeleteAll(ctx, kind); err != nil {
				return err
			}
		}
		if err := openMetadata().DeleteAll(); err != nil {
			return err
		}

		if !quiet && !jsonOutput {
			outln("Cache cleared")
		}
		return nil
	},
}

var pruneDays int

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old location pings",
	Long:  "Removes raw location pings older than the retention window. Pings are high-frequency samples that lose value quickly; visits derived from them are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openStore()
		if err != nil {
			return err
		}
		defer closeStore()

		cutoff := time.Now().AddDate(0, 0, -pruneDays)
		if err := store.DeleteOlderThan(cmd.Context(), records.KindLocationPing, cutoff); err != nil {
			return err
		}
		if !quiet && !jsonOutput {
			out("Pruned pings older than %s\n", cutoff.Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	cachePruneCmd.Flags().IntVar(&pruneDays, "days", 30, "Retention window in days")

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}
