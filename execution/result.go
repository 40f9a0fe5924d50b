package execution

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/liuxd6825/flakerun/scenario"
)

// Outcome is the verdict of a run.
type Outcome int

// Run outcomes.
const (
	Success Outcome = iota
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// RunResult is the result of one run.
type RunResult struct {
	RunIndex  int
	Outcome   Outcome
	Err       error
	OutputDir string
	Artifacts []string
	Duration  time.Duration
}

// Reason returns the single line failure reason, or an empty string for a
// successful run.
func (r RunResult) Reason() string {
	if r.Outcome == Success || r.Err == nil {
		return ""
	}
	return strings.Join(strings.Fields(r.Err.Error()), " ")
}

// BatchResult aggregates the runs of a batch.
type BatchResult struct {
	ID        string
	Scenario  string
	Runs      []RunResult
	Successes int
	Started   time.Time
	Duration  time.Duration
}

func (b *BatchResult) add(r RunResult) {
	b.Runs = append(b.Runs, r)
	if r.Outcome == Success {
		b.Successes++
	}
}

// Total returns the number of runs.
func (b *BatchResult) Total() int {
	return len(b.Runs)
}

// Failures returns the number of failed runs.
func (b *BatchResult) Failures() int {
	return b.Total() - b.Successes
}

// SuccessRate returns the rounded percentage of successful runs, 0 for an
// empty batch.
func (b *BatchResult) SuccessRate() int {
	if b.Total() == 0 {
		return 0
	}
	return int(math.Round(float64(b.Successes) / float64(b.Total()) * 100))
}

// Summary returns the headline of the report.
func (b *BatchResult) Summary() string {
	return fmt.Sprintf("success: %d/%d (%d%%)", b.Successes, b.Total(), b.SuccessRate())
}

// StepError is returned for the first failing action of a step.
type StepError struct {
	Step   int
	Name   string
	Action int
	Tag    scenario.ActionTag
	Label  string
	Err    error
}

func (e *StepError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("step %d (%s): %s", e.Step, e.Name, e.Err)
	}
	what := string(e.Tag)
	if e.Label != "" {
		what = fmt.Sprintf("%s %q", e.Tag, e.Label)
	}
	return fmt.Sprintf("step %d (%s), action %d %s: %s", e.Step, e.Name, e.Action, what, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
