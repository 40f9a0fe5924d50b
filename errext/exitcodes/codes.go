// Package exitcodes contains the constants representing possible flakerun exit error codes.
package exitcodes

// ExitCode is just a type representing a process exit code for flakerun
type ExitCode uint8

// list of exit codes used by flakerun
const (
	RunsFailed      ExitCode = 97
	InvalidConfig   ExitCode = 104
	ExternalAbort   ExitCode = 105
	InvalidScenario ExitCode = 106
	BrowserLaunch   ExitCode = 107
	ReportWrite     ExitCode = 108
	GoPanic         ExitCode = 111
)
