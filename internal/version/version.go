// Package version holds build metadata injected with -ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/pageinject/internal/version.Version=v1.0.0"
package version

import "fmt"

// Build metadata. Unset values read "unknown".
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String renders the metadata for --version.
func String() string {
	return fmt.Sprintf("pageinject %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
