package errext

import (
	"errors"

	"github.com/liuxd6825/flakerun/errext/exitcodes"
)

// InterruptError is returned when the batch was stopped from the outside,
// usually by a signal.
type InterruptError struct {
	Reason string
}

var _ HasExitCode = &InterruptError{}

// Error returns the reason of the interruption.
func (i *InterruptError) Error() string {
	return i.Reason
}

// ExitCode returns the status code used when the process exits.
func (i *InterruptError) ExitCode() exitcodes.ExitCode {
	return exitcodes.ExternalAbort
}

// AbortedBySignal is the reason used when a signal cancels the batch.
const AbortedBySignal = "batch interrupted by signal"

// IsInterruptError returns true if err is *InterruptError.
func IsInterruptError(err error) bool {
	if err == nil {
		return false
	}
	var intErr *InterruptError
	return errors.As(err, &intErr)
}
