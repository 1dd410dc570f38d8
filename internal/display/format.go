package display

import (
	"fmt"
	"strconv"
	"time"
)

// FormatDuration formats a duration as a compact human-readable string
// (e.g. "2d 3h", "5h 42m", "15m").
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total <= 0 {
		return "0m"
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	if days > 0 {
		return formatDH(days, hours)
	}
	if hours > 0 {
		return formatHM(hours, minutes)
	}
	return formatM(minutes)
}

func formatDH(d, h int) string { return strconv.Itoa(d) + "d " + strconv.Itoa(h) + "h" }
func formatHM(h, m int) string { return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m" }
func formatM(m int) string     { return strconv.Itoa(m) + "m" }

// FormatDay renders a logical-day date without its time component.
func FormatDay(t time.Time) string {
	return t.Format("Mon Jan 02")
}

// FormatTrend renders a trend percentage with an explicit sign, or a
// placeholder when the trend is undefined.
func FormatTrend(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *pct)
}

// FormatValue renders a metric value, dropping a fractional part of zero.
func FormatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
