// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// version.go — build-time version, date, and environment metadata injected
// via -ldflags and exposed through the Version() function.

package stash

import "runtime/debug"

// Build-time variables injected via -ldflags.
// Defaults represent an unversioned local development build.
//
//	BuildDate format : YYYY.MM.DD-HHMM  (24-hour clock)
//	BuildEnv  values : dev | qa | prod
var (
	// Set by: -ldflags "-X 'github.com/AndrewDonelson/stash.BuildDate=2026.10.14-0930'"
	BuildDate = "0000.00.00-0000"

	// Set by: -ldflags "-X 'github.com/AndrewDonelson/stash.BuildEnv=prod'"
	BuildEnv = "dev"
)

// Version returns "BuildDate-BuildEnv", e.g. "2026.10.14-0930-prod".
func Version() string {
	return BuildDate + "-" + BuildEnv
}

// BuildInfo describes the running binary beyond the ldflags stamp.
type BuildInfo struct {
	Version   string // Version()
	Module    string // main module version, "(devel)" for local builds
	GoVersion string
}

// ReadBuildInfo combines Version with the toolchain data embedded by the Go
// linker. Module and GoVersion are empty when the binary carries no build info.
func ReadBuildInfo() BuildInfo {
	bi := BuildInfo{Version: Version()}
	if info, ok := debug.ReadBuildInfo(); ok {
		bi.Module = info.Main.Version
		bi.GoVersion = info.GoVersion
	}
	return bi
}
