package common

import "time"

const (
	// Defaults

	DefaultScreenWidth  int64         = 1280
	DefaultScreenHeight int64         = 720
	DefaultTimeout      time.Duration = 30 * time.Second

	// DiagnosticsTimeout bounds a single failure screenshot or DOM dump.
	DiagnosticsTimeout time.Duration = 10 * time.Second
)
