// Package studylog pulls per-day study statistics from the study app's
// HTTP API.
package studylog

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/daybook-app/daybook/internal/cache"
	"github.com/daybook-app/daybook/internal/fetch"
	"github.com/daybook-app/daybook/internal/httpclient"
	"github.com/daybook-app/daybook/internal/models"
	"github.com/daybook-app/daybook/internal/provider"
	"github.com/daybook-app/daybook/internal/records"
)

type StudyLog struct{}

func (StudyLog) Meta() provider.Metadata {
	return provider.Metadata{
		ID:          "studylog",
		Name:        "StudyLog",
		Description: "Daily study minutes and completed units",
	}
}

func (StudyLog) Datasets(s provider.Settings) []fetch.Dataset {
	return []fetch.Dataset{
		{
			Key:      "studylog.effort",
			Kind:     records.KindDailyEffort,
			Strategy: fetch.DateBasedStrategy{VolatileWindowDays: 1},
			Remote:   &Remote{BaseURL: s.BaseURL, Token: s.Token, Timeout: s.Timeout},
		},
	}
}

func init() {
	provider.Register(StudyLog{})
}

type effortResponse struct {
	Days []effortDay `json:"days"`
}

type effortDay struct {
	Day       string `json:"day"`
	Minutes   int    `json:"minutes"`
	UnitsDone int    `json:"units_done"`
}

// Remote queries the effort endpoint for a closed date range.
type Remote struct {
	BaseURL string
	Token   string
	Timeout float64
}

func (r *Remote) FetchRange(ctx context.Context, kind cache.Kind, from, to time.Time) ([]cache.Record, error) {
	if kind != records.KindDailyEffort {
		return nil, fmt.Errorf("%w: %s", cache.ErrUnsupportedKind, kind)
	}

	client := httpclient.NewWithTimeout(r.Timeout)
	query := url.Values{}
	query.Set("from", from.Format("2006-01-02"))
	query.Set("to", to.Format("2006-01-02"))

	var opts []httpclient.RequestOption
	if r.Token != "" {
		opts = append(opts, httpclient.WithBearer(r.Token))
	}

	var body effortResponse
	resp, err := client.GetJSONCtx(ctx, r.BaseURL+"/api/effort?"+query.Encode(), &body, opts...)
	if err != nil {
		return nil, fmt.Errorf("studylog: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("studylog: status %d: %s", resp.StatusCode, httpclient.SummarizeBody(resp.Body))
	}

	out := make([]cache.Record, 0, len(body.Days))
	for _, d := range body.Days {
		day, err := time.ParseInLocation("2006-01-02", d.Day, time.Local)
		if err != nil {
			return nil, fmt.Errorf("studylog: bad day %q: %w", d.Day, err)
		}
		out = append(out, records.Wrap(kind, models.DailyEffort{
			Day:       day,
			Minutes:   d.Minutes,
			UnitsDone: d.UnitsDone,
		}))
	}
	return out, nil
}
