// Package records binds the concrete payload types to cache descriptors.
// Each kind gets one descriptor naming its identity and record-date
// extractors; the store itself stays generic over all of them.
package records

import (
	"encoding/json"
	"time"

	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/models"
)

var (
	KindBodyMeasurement = cache.Kind{Source: cache.SourceWiiFit, Name: "body-measurement"}
	KindFitActivity     = cache.Kind{Source: cache.SourceWiiFit, Name: "fit-activity"}
	KindDailyEffort     = cache.Kind{Source: cache.SourceStudyLog, Name: "daily-effort"}
	KindContestResult   = cache.Kind{Source: cache.SourceArena, Name: "contest-result"}
	KindTaskSession     = cache.Kind{Source: cache.SourceLocal, Name: "task-session"}
	KindSleepSession    = cache.Kind{Source: cache.SourceLocal, Name: "sleep-session"}
	KindLocationVisit   = cache.Kind{Source: cache.SourceLocal, Name: "location-visit"}
	KindLocationPing    = cache.Kind{Source: cache.SourceLocal, Name: "location-ping"}
)

// descriptor builds a cache.Descriptor for payload type T, replacing the
// per-kind persistence boilerplate with one generic path.
func descriptor[T any](kind cache.Kind, identity func(T) string, date func(T) time.Time) cache.Descriptor {
	return cache.Descriptor{
		Kind:       kind,
		Identity:   func(p any) string { return identity(p.(T)) },
		RecordDate: func(p any) time.Time { return date(p.(T)) },
		Decode: func(data []byte) (any, error) {
			var p T
			if err := json.Unmarshal(data, &p); err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

var all []cache.Descriptor
var byKind = make(map[cache.Kind]cache.Descriptor)

func init() {
	all = []cache.Descriptor{
		descriptor(KindBodyMeasurement,
			models.BodyMeasurement.Identity,
			func(m models.BodyMeasurement) time.Time { return m.TakenAt }),
		descriptor(KindFitActivity,
			models.FitActivity.Identity,
			func(a models.FitActivity) time.Time { return a.Date }),
		descriptor(KindDailyEffort,
			models.DailyEffort.Identity,
			func(e models.DailyEffort) time.Time { return e.Day }),
		descriptor(KindContestResult,
			models.ContestResult.Identity,
			func(r models.ContestResult) time.Time { return r.Date }),
		descriptor(KindTaskSession,
			func(s models.TaskSession) string { return s.ID },
			func(s models.TaskSession) time.Time { return s.Start }),
		descriptor(KindSleepSession,
			func(s models.SleepSession) string { return s.ID },
			func(s models.SleepSession) time.Time { return s.Start }),
		descriptor(KindLocationVisit,
			func(v models.LocationVisit) string { return v.ID },
			func(v models.LocationVisit) time.Time { return v.Start }),
		descriptor(KindLocationPing,
			func(p models.LocationPing) string { return p.ID },
			func(p models.LocationPing) time.Time { return p.At }),
	}
	for _, d := range all {
		byKind[d.Kind] = d
	}
}

// Descriptors returns one descriptor per known record kind.
func Descriptors() []cache.Descriptor {
	return all
}

// NewRegistry returns a registry covering every known kind.
func NewRegistry() *cache.Registry {
	return cache.NewRegistry(all...)
}

// Wrap builds a cache.Record for a payload of a known kind. Unknown kinds
// produce a record the store will reject with ErrUnsupportedKind.
func Wrap(kind cache.Kind, payload any) cache.Record {
	if d, ok := byKind[kind]; ok {
		return d.Wrap(payload)
	}
	return cache.Record{Kind: kind, Payload: payload}
}
