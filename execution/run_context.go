package execution

import (
	"sync"

	"github.com/spf13/afero"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/log"
)

// RunContext is the state of a single run. The logger is scoped to the run,
// so its line counter starts at 1 for every run.
type RunContext struct {
	RunIndex  int
	OutputDir string
	FS        afero.Fs
	Session   common.Session
	Logger    *log.Logger

	mu        sync.Mutex
	artifacts []string
}

// AddArtifacts records files written into the run directory.
func (rc *RunContext) AddArtifacts(paths ...string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.artifacts = append(rc.artifacts, paths...)
}

// Artifacts returns the files written so far.
func (rc *RunContext) Artifacts() []string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]string(nil), rc.artifacts...)
}
