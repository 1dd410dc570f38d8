// Package arena pulls rated contest results from the competition site.
// Results for recent contests keep changing while rating recalculations
// run, so the dataset always refetches a trailing window instead of
// tracking a watermark.
package arena

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

type Arena struct{}

func (Arena) Meta() provider.Metadata {
	return provider.Metadata{
		ID:          "arena",
		Name:        "Arena",
		Description: "Contest placements and rating changes",
	}
}

func (Arena) Datasets(s provider.Settings) []fetch.Dataset {
	return []fetch.Dataset{
		{
			Key:      "arena.results",
			Kind:     records.KindContestResult,
			Strategy: fetch.AlwaysFetchRecentStrategy{RecentDays: 7},
			Remote:   &Remote{BaseURL: s.BaseURL, Token: s.Token, Timeout: s.Timeout},
		},
	}
}

func init() {
	provider.Register(Arena{})
}

type resultsResponse struct {
	Results []contestResult `json:"results"`
}

type contestResult struct {
	ContestID   string `json:"contest_id"`
	Date        string `json:"date"`
	Rank        int    `json:"rank"`
	RatingDelta int    `json:"rating_delta"`
}

type Remote struct {
	BaseURL string
	Token   string
	Timeout float64
}

func (r *Remote) FetchRange(ctx context.Context, kind cache.Kind, from, to time.Time) ([]cache.Record, error) {
	if kind != records.KindContestResult {
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

	var body resultsResponse
	resp, err := client.GetJSONCtx(ctx, r.BaseURL+"/api/results?"+query.Encode(), &body, opts...)
	if err != nil {
		return nil, fmt.Errorf("arena: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("arena: status %d: %s", resp.StatusCode, httpclient.SummarizeBody(resp.Body))
	}

	out := make([]cache.Record, 0, len(body.Results))
	for _, res := range body.Results {
		date, err := time.ParseInLocation("2006-01-02", res.Date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("arena: bad date %q: %w", res.Date, err)
		}
		out = append(out, records.Wrap(kind, models.ContestResult{
			ContestID:   res.ContestID,
			Date:        date,
			Rank:        res.Rank,
			RatingDelta: res.RatingDelta,
		}))
	}
	return out, nil
}
