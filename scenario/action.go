// Package scenario holds the in-memory model of a scenario: the ordered
// steps, their actions and the matchers and frame references those
// actions carry.
package scenario

import "time"

// ActionTag identifies the kind of an action.
type ActionTag string

// All actions the engine knows how to dispatch.
const (
	ActionNavigate          ActionTag = "navigate"
	ActionTypeAndSubmit     ActionTag = "typeAndSubmit"
	ActionClick             ActionTag = "click"
	ActionWaitForSelector   ActionTag = "waitForSelector"
	ActionWaitForDuration   ActionTag = "waitForDuration"
	ActionAssertTitle       ActionTag = "assertTitle"
	ActionAssertText        ActionTag = "assertText"
	ActionSwitchFrame       ActionTag = "switchFrame"
	ActionCaptureScreenshot ActionTag = "captureScreenshot"
	ActionDumpContent       ActionTag = "dumpContent"
	ActionCustom            ActionTag = "custom"
)

// ActionTags lists every known tag in declaration order.
func ActionTags() []ActionTag {
	return []ActionTag{
		ActionNavigate,
		ActionTypeAndSubmit,
		ActionClick,
		ActionWaitForSelector,
		ActionWaitForDuration,
		ActionAssertTitle,
		ActionAssertText,
		ActionSwitchFrame,
		ActionCaptureScreenshot,
		ActionDumpContent,
		ActionCustom,
	}
}

// Valid reports whether t is one of the known tags.
func (t ActionTag) Valid() bool {
	for _, known := range ActionTags() {
		if t == known {
			return true
		}
	}
	return false
}

func (t ActionTag) String() string {
	return string(t)
}

// Action is a single interaction with the browser. Which fields matter
// depends on Type.
type Action struct {
	Type       ActionTag
	Target     string
	Value      string
	Frame      *FrameRef
	Expected   *Matcher
	SleepAfter time.Duration
	Label      string
}

// Name returns the label of the action or its tag if there is none.
func (a Action) Name() string {
	if a.Label != "" {
		return a.Label
	}
	return string(a.Type)
}
