package cli

import (
	"bytes"
	"context"
	"testing"
)

// runCommand executes the root command with args, capturing stdout-bound
// output. Shared flag state is reset afterwards so tests stay independent.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	prev := outWriter
	outWriter = &buf
	t.Cleanup(func() {
		outWriter = prev
		jsonOutput = false
		noColor = false
		verbose = false
		quiet = false
		refreshFrom = ""
		refreshTo = ""
		summaryKind = "task"
		summaryDays = 7
		trendKind = "effort"
	})

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// isolateDirs points config and cache at temp dirs so commands never touch
// the real user profile.
func isolateDirs(t *testing.T) {
	t.Helper()
	t.Setenv("DAYBOOK_CONFIG_DIR", t.TempDir())
	t.Setenv("DAYBOOK_CACHE_DIR", t.TempDir())
}
