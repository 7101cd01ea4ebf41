// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/dlf/internal/version.Version=v1.2.0"
package version

import "fmt"

// Build metadata. Overwritten at link time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders "<version> (<commit>, <date>)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
