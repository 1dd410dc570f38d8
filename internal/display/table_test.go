package display

import (
	"strings"
	"testing"
)

func TestNewTableContainsHeadersAndRows(t *testing.T) {
	out := NewTable(
		[]string{"Day", "Total"},
		[][]string{{"Mon Jan 15", "5h 42m"}, {"Tue Jan 16", "2h 10m"}},
	)
	for _, want := range []string{"Day", "Total", "Mon Jan 15", "5h 42m", "2h 10m"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
}

func TestNewTableWithTitle(t *testing.T) {
	out := NewTableWithOptions(
		[]string{"Kind", "Count"},
		[][]string{{"task-session", "12"}},
		TableOptions{Title: "Cache status", NoColor: true},
	)
	if !strings.HasPrefix(out, "Cache status\n") {
		t.Errorf("want title on first line, got %q", out)
	}
}
