package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/7eVeNcO/semtk", Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	}

	tests := []struct {
		name                    string
		version, commit, date   string
		bi                      *debug.BuildInfo
		ok                      bool
		wantVersion, wantCommit string
		wantDate                string
	}{
		{
			name: "Unstamped", version: "dev", commit: "none", date: "unknown", bi: bi, ok: true,
			wantVersion: "v0.3.0", wantCommit: "abc123", wantDate: "2026-10-01T12:00:00Z",
		},
		{
			name: "LdflagsWin", version: "v1.0.0", commit: "fff", date: "today", bi: bi, ok: true,
			wantVersion: "v1.0.0", wantCommit: "fff", wantDate: "today",
		},
		{
			name: "DevelBuild", version: "dev", commit: "none", date: "unknown",
			bi: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, ok: true,
			wantVersion: "dev", wantCommit: "none", wantDate: "unknown",
		},
		{
			name: "NoBuildInfo", version: "dev", commit: "none", date: "unknown",
			wantVersion: "dev", wantCommit: "none", wantDate: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.version, tt.commit, tt.date)
			fill(tt.bi, tt.ok)
			if Version != tt.wantVersion || Commit != tt.wantCommit || Date != tt.wantDate {
				t.Errorf("got %s/%s/%s, want %s/%s/%s", Version, Commit, Date, tt.wantVersion, tt.wantCommit, tt.wantDate)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	stamp(t, "v0.3.0", "abc123", "2026-10-01")
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} version v0.3.0\n") || !strings.Contains(got, "commit: abc123") {
		t.Errorf("Template() = %q", got)
	}
}
