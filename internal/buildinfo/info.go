// Package buildinfo carries version details stamped in at link time.
package buildinfo

import (
	"fmt"
	"runtime"
)

var (
	// Version will be set via ldflags during build.
	Version = "dev"
	// Commit will be set via ldflags during build.
	Commit = "none"
	// Date will be set via ldflags during build.
	Date = "unknown"
)

// String is the one-line version shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// Long adds the toolchain and platform, for the version command.
func Long() string {
	return fmt.Sprintf("khata %s\n  go:       %s\n  platform: %s/%s", String(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
