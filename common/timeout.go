package common

import "time"

// TimeoutSettings holds information on timeout settings.
// Unset values fall back to the parent and finally to DefaultTimeout.
type TimeoutSettings struct {
	parent                   *TimeoutSettings
	defaultTimeout           *time.Duration
	defaultNavigationTimeout *time.Duration
}

// NewTimeoutSettings creates a new timeout settings object.
func NewTimeoutSettings(parent *TimeoutSettings) *TimeoutSettings {
	return &TimeoutSettings{
		parent: parent,
	}
}

// SetDefaultTimeout sets the timeout of element waits.
func (t *TimeoutSettings) SetDefaultTimeout(timeout time.Duration) {
	t.defaultTimeout = &timeout
}

// SetDefaultNavigationTimeout sets the timeout of navigations.
func (t *TimeoutSettings) SetDefaultNavigationTimeout(timeout time.Duration) {
	t.defaultNavigationTimeout = &timeout
}

// NavigationTimeout returns the navigation timeout, which defaults to the
// element timeout when it has not been set explicitly.
func (t *TimeoutSettings) NavigationTimeout() time.Duration {
	if t == nil {
		return DefaultTimeout
	}
	if t.defaultNavigationTimeout != nil {
		return *t.defaultNavigationTimeout
	}
	if t.defaultTimeout != nil {
		return *t.defaultTimeout
	}
	if t.parent != nil {
		return t.parent.NavigationTimeout()
	}
	return DefaultTimeout
}

// Timeout returns the element timeout.
func (t *TimeoutSettings) Timeout() time.Duration {
	if t == nil {
		return DefaultTimeout
	}
	if t.defaultTimeout != nil {
		return *t.defaultTimeout
	}
	if t.parent != nil {
		return t.parent.Timeout()
	}
	return DefaultTimeout
}
