// Package version reports the build version for startup output.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version and CommitHash may be overridden with ldflags at build time.
// When they are not, the commit falls back to the VCS stamp embedded by
// the toolchain.
var (
	Version    = "dev"
	CommitHash = ""
)

// GetInfo formats the version with a short commit hash when one is known.
func GetInfo() string {
	if CommitHash == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					CommitHash = setting.Value
				}
			}
		}
	}

	if CommitHash == "" {
		return Version
	}
	short := CommitHash
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", Version, short)
}
