// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     version
// Description: Build version information
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version is the release version of codasai
const Version = "0.1.0"

// Set through -ldflags "-X github.com/msto63/codasai/pkg/core/version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns the version line printed by the CLI
func String() string {
	return fmt.Sprintf("codasai %s (commit %s, built %s)", Version, Commit, BuildDate)
}
