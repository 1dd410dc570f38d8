package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/display"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/models"
	"github.com/daybook-app/daybook/internal/outbox"
	"github.com/daybook-app/daybook/internal/records"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Record local sessions and location pings",
	Long:  "Writes locally authored records: work sessions, sleep, place visits and raw position pings. When sync is enabled, every mutation except pings is also forwarded to the backup queue.",
}

var trackTaskCmd = &cobra.Command{
	Use:   "task",
	Short: "Track work sessions",
}

var trackTaskStartCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start a work session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncedStore(cmd.Context(), func(ctx context.Context, synced *outbox.SyncedStore, _ *cache.Store) error {
			session := models.TaskSession{
				ID:     uuid.NewString(),
				TaskID: args[0],
				Start:  time.Now(),
			}
			if _, err := synced.Upsert(ctx, records.Wrap(records.KindTaskSession, session)); err != nil {
				return err
			}
			if !quiet && !jsonOutput {
				out("Started task %s (%s)\n", args[0], session.ID)
			}
			return nil
		})
	},
}

var trackTaskStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the open work session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncedStore(cmd.Context(), func(ctx context.Context, synced *outbox.SyncedStore, store *cache.Store) error {
			rec, session, err := openTaskSession(ctx, store)
			if err != nil {
				return err
			}
			now := time.Now()
			session.End = &now
			if _, err := synced.Upsert(ctx, records.Wrap(rec.Kind, session)); err != nil {
				return err
			}
			if !quiet && !jsonOutput {
				out("Stopped task %s after %s\n", session.TaskID, display.FormatDuration(now.Sub(session.Start)))
			}
			return nil
		})
	},
}

var trackSleepCmd = &cobra.Command{
	Use:   "sleep",
	Short: "Track sleep sessions",
}

var trackSleepStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a sleep session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncedStore(cmd.Context(), func(ctx context.Context, synced *outbox.SyncedStore, _ *cache.Store) error {
			session := models.SleepSession{ID: uuid.NewString(), Start: time.Now()}
			if _, err := synced.Upsert(ctx, records.Wrap(records.KindSleepSession, session)); err != nil {
				return err
			}
			if !quiet && !jsonOutput {
				outln("Sleep session started")
			}
			return nil
		})
	},
}

var trackSleepStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the open sleep session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncedStore(cmd.Context(), func(ctx context.Context, synced *outbox.SyncedStore, store *cache.Store) error {
			rec, session, err := openSleepSession(ctx, store)
			if err != nil {
				return err
			}
			now := time.Now()
			session.End = &now
			if _, err := synced.Upsert(ctx, records.Wrap(rec.Kind, session)); err != nil {
				return err
			}
			if !quiet && !jsonOutput {
				out("Slept %s\n", display.FormatDuration(now.Sub(session.Start)))
			}
			return nil
		})
	},
}

var trackVisitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Track stays at named places",
}

var trackVisitStartCmd = &cobra.Command{
	Use:   "start <location-id>",
	Short: "Start a visit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncedStore(cmd.Context(), func(ctx context.Context, synced *outbox.SyncedStore, _ *cache.Store) error {
			visit := models.LocationVisit{
				ID:         uuid.NewString(),
				LocationID: args[0],
				Start:      time.Now(),
			}
			if _, err := synced.Upsert(ctx, records.Wrap(records.KindLocationVisit, visit)); err != nil {
				return err
			}
			if !quiet && !jsonOutput {
				out("Arrived at %s\n", args[0])
			}
			return nil
		})
	},
}

var trackVisitStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the open visit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSyncedStore(cmd.Context(), func(ctx context.Context, synced *outbox.SyncedStore, store *cache.Store) error {
			rec, visit, err := openVisit(ctx, store)
			if err != nil {
				return err
			}
			now := time.Now()
			visit.End = &now
			if _, err := synced.Upsert(ctx, records.Wrap(rec.Kind, visit)); err != nil {
				return err
			}
			if !quiet && !jsonOutput {
				out("Left %s after %s\n", visit.LocationID, display.FormatDuration(now.Sub(visit.Start)))
			}
			return nil
		})
	},
}

var trackPingCmd = &cobra.Command{
	Use:   "ping <lat> <lon>",
	Short: "Record a raw position sample",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: %w", args[0], err)
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: %w", args[1], err)
		}
		return withSyncedStore(cmd.Context(), func(ctx context.Context, synced *outbox.SyncedStore, _ *cache.Store) error {
			ping := models.LocationPing{ID: uuid.NewString(), Lat: lat, Lon: lon, At: time.Now()}
			_, err := synced.Upsert(ctx, records.Wrap(records.KindLocationPing, ping))
			return err
		})
	},
}

func init() {
	trackTaskCmd.AddCommand(trackTaskStartCmd)
	trackTaskCmd.AddCommand(trackTaskStopCmd)
	trackSleepCmd.AddCommand(trackSleepStartCmd)
	trackSleepCmd.AddCommand(trackSleepStopCmd)
	trackVisitCmd.AddCommand(trackVisitStartCmd)
	trackVisitCmd.AddCommand(trackVisitStopCmd)

	trackCmd.AddCommand(trackTaskCmd)
	trackCmd.AddCommand(trackSleepCmd)
	trackCmd.AddCommand(trackVisitCmd)
	trackCmd.AddCommand(trackPingCmd)
}

// withSyncedStore opens the record store wrapped in the sync decorator and
// runs fn. Queue trouble is deliberately non-fatal: sync is best-effort and
// local tracking must keep working offline.
func withSyncedStore(ctx context.Context, fn func(context.Context, *outbox.SyncedStore, *cache.Store) error) error {
	logger := logging.FromContext(ctx)
	cfg := config.Get()

	store, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	var queue outbox.Queue = outbox.NopQueue{}
	if cfg.Sync.Enabled {
		q, err := outbox.DialNATS(cfg.Sync.NATSURL, cfg.Sync.SubjectPrefix)
		if err != nil {
			logger.Warn("sync queue unavailable, recording locally only", "err", err)
		} else {
			queue = q
			defer func() { _ = q.Close() }()
		}
	}

	synced := outbox.NewSyncedStore(
		outbox.StoreLocal{Store: store},
		queue,
		logger,
		outbox.WithoutReplication(records.KindLocationPing),
	)
	return fn(ctx, synced, store)
}

// Open-session lookup scans the recent window for the latest record without
// an end time. Sessions older than the window stay open until edited by
// hand; the CLI never force-closes them.
const openSessionLookbackDays = 14

func openTaskSession(ctx context.Context, store *cache.Store) (cache.Record, models.TaskSession, error) {
	rec, err := latestOpen(ctx, store, records.KindTaskSession, func(payload any) (time.Time, bool) {
		s := payload.(models.TaskSession)
		return s.Start, s.End == nil
	})
	if err != nil {
		return cache.Record{}, models.TaskSession{}, err
	}
	return rec, rec.Payload.(models.TaskSession), nil
}

func openSleepSession(ctx context.Context, store *cache.Store) (cache.Record, models.SleepSession, error) {
	rec, err := latestOpen(ctx, store, records.KindSleepSession, func(payload any) (time.Time, bool) {
		s := payload.(models.SleepSession)
		return s.Start, s.End == nil
	})
	if err != nil {
		return cache.Record{}, models.SleepSession{}, err
	}
	return rec, rec.Payload.(models.SleepSession), nil
}

func openVisit(ctx context.Context, store *cache.Store) (cache.Record, models.LocationVisit, error) {
	rec, err := latestOpen(ctx, store, records.KindLocationVisit, func(payload any) (time.Time, bool) {
		v := payload.(models.LocationVisit)
		return v.Start, v.End == nil
	})
	if err != nil {
		return cache.Record{}, models.LocationVisit{}, err
	}
	return rec, rec.Payload.(models.LocationVisit), nil
}

func latestOpen(ctx context.Context, store *cache.Store, kind cache.Kind, inspect func(any) (time.Time, bool)) (cache.Record, error) {
	from := time.Now().AddDate(0, 0, -openSessionLookbackDays)
	recs, err := store.FetchRange(ctx, kind, &from, nil)
	if err != nil {
		return cache.Record{}, err
	}

	var best cache.Record
	var bestStart time.Time
	found := false
	for _, rec := range recs {
		start, open := inspect(rec.Payload)
		if !open {
			continue
		}
		if !found || start.After(bestStart) {
			best, bestStart, found = rec, start, true
		}
	}
	if !found {
		return cache.Record{}, fmt.Errorf("no open %s in the last %d days", kind.Name, openSessionLookbackDays)
	}
	return best, nil
}
