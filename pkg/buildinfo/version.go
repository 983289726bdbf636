// Package buildinfo reports the semtk version.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags "-X github.com/7eVeNcO/semtk/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/7eVeNcO/semtk/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/7eVeNcO/semtk/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Values left unstamped are filled from the module and VCS data the Go
// toolchain embeds, so "go install github.com/7eVeNcO/semtk/cmd/semtk@latest"
// still reports a real version.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the release tag, e.g. "v0.3.0".
	Version = "dev"
	// Commit is the git revision.
	Commit = "none"
	// Date is the build or commit time.
	Date = "unknown"
)

func init() {
	fill(debug.ReadBuildInfo())
}

// fill replaces unstamped values with embedded module and VCS data.
func fill(bi *debug.BuildInfo, ok bool) {
	if !ok || bi == nil {
		return
	}
	if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = s.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

// String returns the build information, one field per line.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
