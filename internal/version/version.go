package version

import (
	"fmt"
	"runtime/debug"
)

// AppName is the canonical binary name.
const AppName = "oopscan"

// Version information (set via ldflags during build)
var (
	// Version is the current version of oopscan
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// Date is the build date
	Date = "unknown"

	// BuiltBy indicates how the binary was built
	BuiltBy = "source"
)

// GetVersion returns the current version
func GetVersion() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// GetFullVersion returns the full version information, including the
// commit and build metadata
func GetFullVersion() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, by: %s)",
		AppName, GetVersion(), GetCommit(), Date, BuiltBy)
}

// GetCommit returns the git commit hash. When the binary was built
// without ldflags (plain go install), it falls back to the VCS revision
// embedded by the Go toolchain.
func GetCommit() string {
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return Commit
}
