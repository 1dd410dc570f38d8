package arena

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daybook-app/daybook/internal/fetch"
	"github.com/daybook-app/daybook/internal/models"
	"github.com/daybook-app/daybook/internal/provider"
	"github.com/daybook-app/daybook/internal/records"
)

func TestFetchRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/results" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"results": [
			{"contest_id": "weekly-412", "date": "2024-02-10", "rank": 152, "rating_delta": 18},
			{"contest_id": "weekly-413", "date": "2024-02-17", "rank": 98, "rating_delta": 31}
		]}`))
	}))
	defer server.Close()

	remote := &Remote{BaseURL: server.URL}
	from := time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 2, 17, 0, 0, 0, 0, time.Local)

	got, err := remote.FetchRange(context.Background(), records.KindContestResult, from, to)
	if err != nil {
		t.Fatalf("FetchRange() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	second := got[1].Payload.(models.ContestResult)
	if second.ContestID != "weekly-413" || second.RatingDelta != 31 {
		t.Errorf("second result = %+v", second)
	}
	if got[1].Identity != "weekly-413" {
		t.Errorf("identity = %q, want contest id", got[1].Identity)
	}
}

func TestDatasetsUseRecentWindow(t *testing.T) {
	datasets := Arena{}.Datasets(provider.Settings{BaseURL: "https://arena.example"})
	if len(datasets) != 1 {
		t.Fatalf("got %d datasets, want 1", len(datasets))
	}
	strategy, ok := datasets[0].Strategy.(fetch.AlwaysFetchRecentStrategy)
	if !ok {
		t.Fatalf("strategy = %T, want AlwaysFetchRecentStrategy", datasets[0].Strategy)
	}
	if strategy.RecentDays != 7 {
		t.Errorf("RecentDays = %d, want 7", strategy.RecentDays)
	}
}
