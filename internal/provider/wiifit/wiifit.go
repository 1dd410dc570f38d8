// Package wiifit pulls body measurements and training activities from the
// homebrew console exporter, which serves the full savegame contents as a
// single JSON document on the local network.
package wiifit

import (
	"context"
	"fmt"
	"time"

	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/fetch"
	"github.com/daybook-app/daybook/internal/httpclient"
	"github.com/daybook-app/daybook/internal/models"
	"github.com/daybook-app/daybook/internal/provider"
	"github.com/daybook-app/daybook/internal/records"
)

type WiiFit struct{}

func (WiiFit) Meta() provider.Metadata {
	return provider.Metadata{
		ID:          "wiifit",
		Name:        "Wii Fit",
		Description: "Balance-board measurements and training log from the console exporter",
	}
}

func (WiiFit) Datasets(s provider.Settings) []fetch.Dataset {
	remote := &Remote{BaseURL: s.BaseURL, Timeout: s.Timeout}
	strategy := fetch.DateBasedStrategy{VolatileWindowDays: 1}
	return []fetch.Dataset{
		{Key: "wiifit.body", Kind: records.KindBodyMeasurement, Strategy: strategy, Remote: remote},
		{Key: "wiifit.activity", Kind: records.KindFitActivity, Strategy: strategy, Remote: remote},
	}
}

func init() {
	provider.Register(WiiFit{})
}

// exporter timestamp layout, no zone suffix; readings are in local time.
const exportTimeLayout = "2006-01-02T15:04:05"

type exportResponse struct {
	Version  int             `json:"version"`
	Profiles []exportProfile `json:"profiles"`
	Error    *exportError    `json:"error"`
}

type exportProfile struct {
	Name         string              `json:"name"`
	HeightCm     int                 `json:"height_cm"`
	DOB          string              `json:"dob"`
	Measurements []exportMeasurement `json:"measurements"`
	Activities   []exportActivity    `json:"activities"`
}

type exportMeasurement struct {
	Date           string  `json:"date"`
	WeightKg       float64 `json:"weight_kg"`
	BMI            float64 `json:"bmi"`
	BalancePercent float64 `json:"balance_percent"`
}

type exportActivity struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	DurationMin int    `json:"duration_min"`
	Calories    int    `json:"calories"`
	Score       int    `json:"score"`
}

type exportError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Remote fetches the exporter document and filters it to the requested
// kind and date range. The exporter always returns the whole savegame, so
// range filtering happens client-side.
type Remote struct {
	BaseURL string
	Timeout float64
}

func (r *Remote) FetchRange(ctx context.Context, kind cache.Kind, from, to time.Time) ([]cache.Record, error) {
	client := httpclient.NewWithTimeout(r.Timeout)

	var export exportResponse
	resp, err := client.GetJSONCtx(ctx, r.BaseURL+"/export", &export)
	if err != nil {
		return nil, fmt.Errorf("wiifit exporter: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("wiifit exporter: status %d: %s", resp.StatusCode, httpclient.SummarizeBody(resp.Body))
	}
	if export.Error != nil {
		return nil, fmt.Errorf("wiifit exporter: %s (code %d)", export.Error.Message, export.Error.Code)
	}

	// The requested end is a day-aligned start; include the whole day.
	rangeEnd := to.AddDate(0, 0, 1)

	var out []cache.Record
	for _, profile := range export.Profiles {
		switch kind {
		case records.KindBodyMeasurement:
			for _, m := range profile.Measurements {
				taken, err := time.ParseInLocation(exportTimeLayout, m.Date, time.Local)
				if err != nil {
					continue
				}
				if taken.Before(from) || !taken.Before(rangeEnd) {
					continue
				}
				out = append(out, records.Wrap(kind, models.BodyMeasurement{
					Profile:        profile.Name,
					TakenAt:        taken,
					WeightKg:       m.WeightKg,
					BMI:            m.BMI,
					BalancePercent: m.BalancePercent,
				}))
			}
		case records.KindFitActivity:
			for _, a := range profile.Activities {
				date, err := time.ParseInLocation(exportTimeLayout, a.Date, time.Local)
				if err != nil {
					continue
				}
				if date.Before(from) || !date.Before(rangeEnd) {
					continue
				}
				out = append(out, records.Wrap(kind, models.FitActivity{
					Profile:     profile.Name,
					Date:        date,
					Type:        activityType(a.Type),
					Name:        a.Name,
					DurationMin: a.DurationMin,
					Calories:    a.Calories,
					Score:       a.Score,
				}))
			}
		default:
			return nil, fmt.Errorf("%w: %s", cache.ErrUnsupportedKind, kind)
		}
	}
	return out, nil
}

func activityType(raw string) models.ActivityType {
	switch models.ActivityType(raw) {
	case models.ActivityYoga, models.ActivityStrength, models.ActivityAerobics,
		models.ActivityBalance, models.ActivityTraining:
		return models.ActivityType(raw)
	default:
		return models.ActivityUnknown
	}
}
