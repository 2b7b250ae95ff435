// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/relaynn/internal/version.Version=v1.0.0"
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the one-line build description.
func String() string {
	return fmt.Sprintf("relaynn %s (%s, %s)", Version, Commit, Date)
}
