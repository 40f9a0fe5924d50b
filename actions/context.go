// Package actions interprets scenario actions against a live browser
// session.
package actions

import (
	"github.com/spf13/afero"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/log"
	"github.com/liuxd6825/flakerun/scenario"
)

// Env is what the actions of one run share.
type Env struct {
	Session   common.Session
	FS        afero.Fs
	OutputDir string
	Timeouts  *common.TimeoutSettings
	Logger    *log.Logger

	// Frame is the frame actions without an own frame run in. It's set by
	// switchFrame and nil means the main document.
	Frame *scenario.FrameRef
}

// Context is passed to a handler. It carries the resolved execution context
// of the action next to the run environment.
type Context struct {
	*Env

	Exec common.ExecutionContext
}

// Outcome is what a successful action reports back.
type Outcome struct {
	Message   string
	Artifacts []string
	// SwitchTo, if set, replaces the current frame of the step.
	SwitchTo *scenario.FrameRef
}
