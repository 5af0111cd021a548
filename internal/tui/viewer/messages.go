// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     viewer
// Description: Message types for async operations in the terminal viewer
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package viewer

import (
	"github.com/msto63/codasai/foundation/state"
	"github.com/msto63/codasai/internal/viewer/session"
)

// dispatchedMsg is sent when a link was run through the session
type dispatchedMsg struct {
	link    string
	view    session.View
	outcome state.Outcome
}

// navigatedMsg is sent after back/forward
type navigatedMsg struct {
	view      session.View
	direction string
	ok        bool
}
