package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liuxd6825/flakerun/scenario"
)

// Error classes, use errors.Is to check against them.
var (
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrInvalidAction     = errors.New("invalid action")
	ErrElementNotFound   = errors.New("element not found")
	ErrTimeout           = errors.New("timeout")
	ErrFrameNotFound     = errors.New("frame not found")
	ErrAssertionMismatch = errors.New("assertion mismatch")
)

// UnsupportedActionError is returned for an action tag with no handler.
type UnsupportedActionError struct {
	Tag scenario.ActionTag
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("unsupported action %q", string(e.Tag))
}

// Is implements errors.Is.
func (e *UnsupportedActionError) Is(target error) bool {
	return target == ErrUnsupportedAction
}

// InvalidActionError is returned when an action misses a field its handler
// needs or a field is malformed.
type InvalidActionError struct {
	Tag    scenario.ActionTag
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid %s action: %s", e.Tag, e.Reason)
}

// Is implements errors.Is.
func (e *InvalidActionError) Is(target error) bool {
	return target == ErrInvalidAction
}

// ElementNotFoundError is returned when a selector didn't match within the
// element timeout.
type ElementNotFoundError struct {
	Selector string
	Timeout  time.Duration
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %q not found within %s", e.Selector, e.Timeout)
}

// Is implements errors.Is. An ElementNotFoundError is also a timeout.
func (e *ElementNotFoundError) Is(target error) bool {
	return target == ErrElementNotFound || target == ErrTimeout
}

// TimeoutError is returned when an operation exceeded its deadline.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Op)
}

// Is implements errors.Is.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// FrameNotFoundError is returned when a frame reference doesn't resolve.
type FrameNotFoundError struct {
	Ref *scenario.FrameRef
	// Available is the number of frames the page had.
	Available int
}

func (e *FrameNotFoundError) Error() string {
	return fmt.Sprintf("frame %s not found among %d frames", e.Ref, e.Available)
}

// Is implements errors.Is.
func (e *FrameNotFoundError) Is(target error) bool {
	return target == ErrFrameNotFound
}

// AssertionMismatchError is returned when an asserted value didn't match.
type AssertionMismatchError struct {
	Subject  string
	Expected scenario.Matcher
	Actual   string
}

func (e *AssertionMismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: expected %s, got %q", e.Subject, e.Expected, e.Actual)
}

// Is implements errors.Is.
func (e *AssertionMismatchError) Is(target error) bool {
	return target == ErrAssertionMismatch
}

// NavigationError is returned when the browser couldn't load a URL.
type NavigationError struct {
	URL    string
	Reason string
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigating to %q: %s", e.URL, e.Reason)
}

// IOError is returned when an artifact couldn't be produced or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// HookPanicError is returned when a custom hook panicked.
type HookPanicError struct {
	Hook  string
	Value any
}

func (e *HookPanicError) Error() string {
	return fmt.Sprintf("custom hook %q panicked: %v", e.Hook, e.Value)
}

// ActionPanicError is returned when the handler of an action panicked.
type ActionPanicError struct {
	Tag   scenario.ActionTag
	Value any
}

func (e *ActionPanicError) Error() string {
	return fmt.Sprintf("action %q panicked: %v", e.Tag, e.Value)
}

// ElementWaitError turns an expired deadline of a selector wait into an
// ElementNotFoundError. Other errors are returned as they are.
func ElementWaitError(selector string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ElementNotFoundError{Selector: selector, Timeout: timeout}
	}
	return err
}

// OperationError turns an expired deadline into a TimeoutError. Other
// errors are returned as they are.
func OperationError(op string, timeout time.Duration, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, Timeout: timeout}
	}
	return err
}
