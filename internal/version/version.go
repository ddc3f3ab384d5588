// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package version carries build metadata injected through ldflags.
package version

var (
	// Version is the current application version.
	// It is populated by the build system (-ldflags "-X ...") and falls back to the last release.
	Version = "v1.0.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// String renders the version line printed by `sage -version`.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
