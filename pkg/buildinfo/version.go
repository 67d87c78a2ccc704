// Package buildinfo exposes the version metadata stamped into flowviz
// binaries at build time.
//
// Release builds overwrite the defaults with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/gejjech/flowviz/pkg/buildinfo.Version=v1.0.0 \
//	  -X github.com/gejjech/flowviz/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/gejjech/flowviz/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version; "dev" for unstamped builds.
	Version = "dev"

	// Commit is the short git commit the binary was built from.
	Commit = "none"

	// Date is the UTC build timestamp.
	Date = "unknown"
)

// String formats the build metadata on one line, for logs and errors.
func String() string {
	return fmt.Sprintf("flowviz %s (commit %s, built %s, %s)", Version, Commit, Date, runtime.Version())
}

// Template returns the cobra --version output template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s, %s)\n", Version, Commit, Date, runtime.Version())
}
