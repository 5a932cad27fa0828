// Package buildinfo reports which build of shattered is running.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags "-X github.com/gre/shattered/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/gre/shattered/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/gre/shattered/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries from "go install" carry no ldflags, so unset values are filled from the
// embedded module and VCS metadata instead.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fillFrom(info)
}

// fillFrom replaces unstamped values with what the toolchain recorded.
func fillFrom(info *debug.BuildInfo) {
	if v := info.Main.Version; Version == "dev" && v != "" && v != "(devel)" {
		Version = v
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// Template is the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, shortCommit(), Date)
}

// UserAgent identifies the binary in HTTP responses, e.g. "shattered/v1.2.3".
func UserAgent() string {
	return "shattered/" + Version
}

func shortCommit() string {
	if len(Commit) > 12 {
		return Commit[:12]
	}
	return Commit
}
