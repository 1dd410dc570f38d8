package cli

import (
	"strings"
	"testing"
)

func TestVersionFlag(t *testing.T) {
	isolateDirs(t)
	out, err := runCommand(t, "--version")
	if err != nil {
		t.Fatalf("--version error = %v", err)
	}
	if !strings.Contains(out, "daybook dev") {
		t.Errorf("output = %q, want version line", out)
	}
}

func TestPersistentFlagsRegistered(t *testing.T) {
	for _, name := range []string{"json", "no-color", "verbose", "quiet"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{"refresh": false, "summary": false, "trend": false, "cache": false, "track": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
