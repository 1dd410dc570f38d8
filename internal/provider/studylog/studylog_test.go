package studylog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daybook-app/daybook/internal/models"
	"github.com/daybook-app/daybook/internal/records"
)

func TestFetchRange(t *testing.T) {
	var gotQuery string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/effort" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"days": [
			{"day": "2024-03-01", "minutes": 95, "units_done": 4},
			{"day": "2024-03-02", "minutes": 0, "units_done": 0}
		]}`))
	}))
	defer server.Close()

	remote := &Remote{BaseURL: server.URL, Token: "tok-123"}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 3, 2, 0, 0, 0, 0, time.Local)

	got, err := remote.FetchRange(context.Background(), records.KindDailyEffort, from, to)
	if err != nil {
		t.Fatalf("FetchRange() error = %v", err)
	}
	if gotQuery != "from=2024-03-01&to=2024-03-02" {
		t.Errorf("query = %q, want from/to dates", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	first := got[0].Payload.(models.DailyEffort)
	if first.Minutes != 95 || first.UnitsDone != 4 {
		t.Errorf("first day = %+v, want 95 minutes / 4 units", first)
	}
	if got[0].Identity != "2024-03-01" {
		t.Errorf("identity = %q, want day string", got[0].Identity)
	}
}

func TestFetchRangeWrongKind(t *testing.T) {
	remote := &Remote{BaseURL: "http://unused"}
	_, err := remote.FetchRange(context.Background(), records.KindContestResult, time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error for foreign kind")
	}
}

func TestFetchRangeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusBadGateway)
	}))
	defer server.Close()

	remote := &Remote{BaseURL: server.URL}
	_, err := remote.FetchRange(context.Background(), records.KindDailyEffort, time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error on HTTP 502")
	}
}
