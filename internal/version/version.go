// Package version holds build information injected with ldflags:
//
//	go build -ldflags "-X github.com/jmgilman/iconkeep/internal/version.Version=v1.0.0 \
//	                   -X github.com/jmgilman/iconkeep/internal/version.Commit=abc123 \
//	                   -X github.com/jmgilman/iconkeep/internal/version.Date=2025-01-01" ./cmd/iconkeep
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit SHA of the build.
	Commit = "none"

	// Date is the build date in ISO 8601 format.
	Date = "unknown"
)

// String returns a one-line summary for --version output.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
