package execution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/scenario"
)

func TestBatchResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcomes []Outcome
		rate     int
		summary  string
		failures int
	}{
		{"empty", nil, 0, "success: 0/0 (0%)", 0},
		{"all_success", []Outcome{Success, Success}, 100, "success: 2/2 (100%)", 0},
		{"two_thirds", []Outcome{Success, Failure, Success}, 67, "success: 2/3 (67%)", 1},
		{"one_third", []Outcome{Failure, Success, Failure}, 33, "success: 1/3 (33%)", 2},
		{"none", []Outcome{Failure}, 0, "success: 0/1 (0%)", 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := &BatchResult{}
			for i, o := range tt.outcomes {
				b.add(RunResult{RunIndex: i + 1, Outcome: o})
			}
			assert.Equal(t, len(tt.outcomes), b.Total())
			assert.Equal(t, tt.rate, b.SuccessRate())
			assert.Equal(t, tt.summary, b.Summary())
			assert.Equal(t, tt.failures, b.Failures())
		})
	}
}

func TestRunResultReason(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RunResult{Outcome: Success}.Reason())
	assert.Equal(t, "a b c", RunResult{Outcome: Failure, Err: errors.New("a\n  b\tc")}.Reason())
}

func TestStepError(t *testing.T) {
	t.Parallel()

	cause := &common.AssertionMismatchError{Subject: "title", Expected: scenario.Exact("wrong"), Actual: "amp"}
	err := &StepError{Step: 2, Name: "Search", Action: 3, Tag: scenario.ActionAssertTitle, Label: "check", Err: cause}
	assert.Equal(t, `step 2 (Search), action 3 assertTitle "check": title mismatch: expected equals "wrong", got "amp"`,
		err.Error())
	assert.ErrorIs(t, err, common.ErrAssertionMismatch)

	err = &StepError{Step: 1, Name: "Search", Action: 1, Tag: scenario.ActionClick, Err: cause}
	assert.Contains(t, err.Error(), "action 1 click: ")

	err = &StepError{Step: 1, Name: "Search", Err: errors.New("context canceled")}
	assert.Equal(t, "step 1 (Search): context canceled", err.Error())
}
