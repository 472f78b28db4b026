// Package version reports the dashboard build version.
// Set it at build time with:
//
//	go build -ldflags "-X github.com/ramonehamilton/fine-dashboard/internal/version.Version=v0.3.0 -X github.com/ramonehamilton/fine-dashboard/internal/version.Commit=$(git rev-parse --short HEAD)"
package version

import "runtime"

// Version is the release version, "dev" for local builds.
var Version = "dev"

// Commit is the short commit hash the binary was built from.
var Commit = ""

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"goVersion"`
}

// GetInfo returns the build information.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
	}
}
