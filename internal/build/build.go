// Package build holds the build time information of flakerun.
package build

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version contains the current semantic version of flakerun.
const Version = "0.1.0"

const commitKey = "vcs.revision"

// FullVersion returns the version with the commit, the Go version and the
// platform, e.g. "0.1.0 (commit/0123456789, go1.23.4, linux/amd64)".
func FullVersion() string {
	goVersionArch := fmt.Sprintf("%s, %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if commit := revision(); commit != "" {
		return fmt.Sprintf("%s (commit/%s, %s)", Version, commit, goVersionArch)
	}
	return fmt.Sprintf("%s (%s)", Version, goVersionArch)
}

// VersionDetails returns the version parts as a map for the JSON output.
func VersionDetails() map[string]string {
	details := map[string]string{
		"version":    "v" + Version,
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
	}
	if commit := revision(); commit != "" {
		details["commit"] = commit
	}
	return details
}

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == commitKey && len(s.Value) >= 10 {
			return s.Value[:10]
		}
	}
	return ""
}
