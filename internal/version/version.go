// Package version holds build metadata set with -ldflags "-X".
package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns the one-line form printed by "vario version".
func String() string {
	return fmt.Sprintf("vario %s (%s, built %s)", Version, GitSHA, BuildTime)
}
