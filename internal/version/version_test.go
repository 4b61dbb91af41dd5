package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColoredPlain(t *testing.T) {
	prevNoColor, prevVersion := color.NoColor, Version
	defer func() { color.NoColor, Version = prevNoColor, prevVersion }()
	color.NoColor = true

	tests := map[string]string{
		"0.1.0-dev":  "0.1.0-dev",
		"1.2.3":      "1.2.3",
		"1.0.0-rc.1": "1.0.0-rc.1",
		"not-semver": "not-semver",
	}
	for in, want := range tests {
		Version = in
		if got := Colored(); got != want {
			t.Fatalf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetPrefersLinkerValues(t *testing.T) {
	prevCommit, prevDate := GitCommit, BuildDate
	defer func() { GitCommit, BuildDate = prevCommit, prevDate }()
	GitCommit, BuildDate = "abc123", "2024-01-15T10:30:00Z"

	info := Get()
	if info.Version != Version || info.GitCommit != "abc123" || info.BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatalf("info = %+v", info)
	}
}
