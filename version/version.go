package version

import "fmt"

// These variables are set at build time via -ldflags
// Example: go build -ldflags "-X talentapi/version.Version=v1.0.1"
var (
	// Version is the semantic version of the application
	Version = "1.0.0"

	// Commit is the git commit hash
	Commit = "none"

	// BuildTime is the timestamp of the build
	BuildTime = "unknown"
)

// String returns a one-line description of the build
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime)
}
