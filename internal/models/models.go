package models

import (
	"fmt"
	"time"
)

// ActivityType classifies a Wii Fit training activity.
type ActivityType string

const (
	ActivityYoga     ActivityType = "yoga"
	ActivityStrength ActivityType = "strength"
	ActivityAerobics ActivityType = "aerobics"
	ActivityBalance  ActivityType = "balance"
	ActivityTraining ActivityType = "training"
	ActivityUnknown  ActivityType = "unknown"
)

// BodyMeasurement is a single balance-board reading for one profile.
type BodyMeasurement struct {
	Profile        string    `json:"profile"`
	TakenAt        time.Time `json:"taken_at"`
	WeightKg       float64   `json:"weight_kg"`
	BMI            float64   `json:"bmi"`
	BalancePercent float64   `json:"balance_percent"`
}

func (m BodyMeasurement) Identity() string {
	return m.Profile + "/" + m.TakenAt.UTC().Format(time.RFC3339)
}

// FitActivity is a logged training session from the console exporter.
type FitActivity struct {
	Profile     string       `json:"profile"`
	Date        time.Time    `json:"date"`
	Type        ActivityType `json:"type"`
	Name        string       `json:"name"`
	DurationMin int          `json:"duration_min"`
	Calories    int          `json:"calories"`
	Score       int          `json:"score"`
}

func (a FitActivity) Identity() string {
	return fmt.Sprintf("%s/%s/%s", a.Profile, a.Date.UTC().Format("2006-01-02"), a.Name)
}

// DailyEffort is one day of study-app statistics.
type DailyEffort struct {
	Day       time.Time `json:"day"`
	Minutes   int       `json:"minutes"`
	UnitsDone int       `json:"units_done"`
}

func (e DailyEffort) Identity() string {
	return e.Day.UTC().Format("2006-01-02")
}

// ContestResult is a placement in one rated contest.
type ContestResult struct {
	ContestID   string    `json:"contest_id"`
	Date        time.Time `json:"date"`
	Rank        int       `json:"rank"`
	RatingDelta int       `json:"rating_delta"`
}

func (r ContestResult) Identity() string {
	return r.ContestID
}

// TaskSession is a locally authored work session. A nil End means the
// session is still running.
type TaskSession struct {
	ID     string     `json:"id"`
	TaskID string     `json:"task_id"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end,omitempty"`
}

// DurationAt returns the session length, using reference as the end for a
// session still in progress.
func (s TaskSession) DurationAt(reference time.Time) time.Duration {
	return spanDuration(s.Start, s.End, reference)
}

// SleepSession is a locally authored sleep record.
type SleepSession struct {
	ID    string     `json:"id"`
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

func (s SleepSession) DurationAt(reference time.Time) time.Duration {
	return spanDuration(s.Start, s.End, reference)
}

// LocationVisit is a stay at a named place.
type LocationVisit struct {
	ID         string     `json:"id"`
	LocationID string     `json:"location_id"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end,omitempty"`
}

func (v LocationVisit) DurationAt(reference time.Time) time.Duration {
	return spanDuration(v.Start, v.End, reference)
}

// LocationPing is a raw position sample. Pings are high-frequency and are
// pruned aggressively; they are never replicated to the sync queue.
type LocationPing struct {
	ID  string    `json:"id"`
	Lat float64   `json:"lat"`
	Lon float64   `json:"lon"`
	At  time.Time `json:"at"`
}

func spanDuration(start time.Time, end *time.Time, reference time.Time) time.Duration {
	effective := reference
	if end != nil {
		effective = *end
	}
	if effective.Before(start) {
		return 0
	}
	return effective.Sub(start)
}
