package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestFill(t *testing.T) {
	tests := []struct {
		name                string
		info                debug.BuildInfo
		version, commit, at string
	}{
		{
			name:    "devel build",
			info:    debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			version: "dev", commit: "none", at: "unknown",
		},
		{
			name: "go install",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "v0.3.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
				},
			},
			version: "v0.3.0", commit: "0123456", at: "2026-10-01T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = "dev", "none", "unknown"
			fill(&tt.info)
			if Version != tt.version || Commit != tt.commit || Date != tt.at {
				t.Errorf("fill() = %s %s %s, want %s %s %s", Version, Commit, Date, tt.version, tt.commit, tt.at)
			}
		})
	}
}

func TestFillKeepsLinkerValues(t *testing.T) {
	Version, Commit, Date = "v1.0.0", "abc1234", "2026-01-01"
	fill(&debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffffffff"}},
	})
	if Version != "v1.0.0" || Commit != "abc1234" {
		t.Errorf("fill() overwrote linker values: %s %s", Version, Commit)
	}
}

func TestTemplate(t *testing.T) {
	Version, Commit, Date = "v1.0.0", "abc1234", "2026-01-01"
	if got, want := Template(), "{{.Name}} v1.0.0 (abc1234, 2026-01-01)\n"; got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
}
