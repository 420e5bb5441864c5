// Package version defines the client version and build metadata.
//
// CommitHash should be set with -ldflags during compilation.
package version

import (
	"fmt"
	"strings"
)

// CommitHash stores the git commit hash of this build.
var CommitHash string

// These constants follow the semantic versioning 2.0.0 spec
// (https://semver.org/).
const (
	appMajor uint = 1
	appMinor uint = 0
	appPatch uint = 0
)

// Version returns the semantic version string.
func Version() string {
	return fmt.Sprintf("%d.%d.%d", appMajor, appMinor, appPatch)
}

// RichVersion returns the semantic version along with best-effort build
// metadata.
func RichVersion() string {
	hash := strings.TrimSpace(CommitHash)
	if hash == "" {
		return Version()
	}
	return fmt.Sprintf("%s commit_hash=%s", Version(), hash)
}
