package scenario

import "time"

// Step is a named, ordered group of actions.
type Step struct {
	Name                 string
	Actions              []Action
	Skip                 bool
	CaptureHTMLOnSuccess bool
}

// Scenario is what every run of a batch executes.
type Scenario struct {
	Name             string
	Steps            []Step
	InterActionDelay time.Duration
	InterStepDelay   time.Duration
}

// ActionCount returns the number of actions of all steps that are not
// skipped.
func (s *Scenario) ActionCount() int {
	n := 0
	for _, step := range s.Steps {
		if !step.Skip {
			n += len(step.Actions)
		}
	}
	return n
}
