package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTagValid(t *testing.T) {
	t.Parallel()

	for _, tag := range ActionTags() {
		assert.True(t, tag.Valid(), tag)
	}
	assert.False(t, ActionTag("teleport").Valid())
	assert.False(t, ActionTag("").Valid())
	assert.Len(t, ActionTags(), 11)
}

func TestActionName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "click", Action{Type: ActionClick}.Name())
	assert.Equal(t, "submit form", Action{Type: ActionClick, Label: "submit form"}.Name())
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		matcher Matcher
		actual  string
		want    bool
	}{
		{"exact_equal", Exact("amp-list - Example Search"), "amp-list - Example Search", true},
		{"exact_prefix", Exact("amp-list"), "amp-list - Example Search", false},
		{"exact_empty", Exact(""), "", true},
		{"pattern_unanchored", MustPattern(`amp-(list|bind)`), "the amp-bind demo", true},
		{"pattern_anchored", MustPattern(`^amp-list$`), "amp-list - Example Search", false},
		{"pattern_no_match", MustPattern(`wrong`), "amp-list", false},
		{"pattern_literal_value", Matcher{Kind: MatchPattern, Value: `\d+ results`}, "42 results", true},
		{"pattern_literal_invalid", Matcher{Kind: MatchPattern, Value: `(`}, "(", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.matcher.Match(tt.actual))
		})
	}
}

func TestMatcherString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `equals "wrong"`, Exact("wrong").String())
	assert.Equal(t, "matches /a.c/", MustPattern("a.c").String())
	assert.Equal(t, "pattern", MatchPattern.String())
}

func TestPatternInvalid(t *testing.T) {
	t.Parallel()

	_, err := Pattern("(unclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
	assert.Panics(t, func() { MustPattern("[") })
}

func TestFrameRef(t *testing.T) {
	t.Parallel()

	var nilRef *FrameRef
	assert.True(t, nilRef.IsMain())
	assert.Equal(t, "main", nilRef.String())
	assert.True(t, MainFrame().IsMain())
	assert.False(t, FrameIndex(0).IsMain())
	assert.Equal(t, "index 2", FrameIndex(2).String())
	assert.Equal(t, `name "checkout"`, FrameName("checkout").String())
}

func TestScenarioActionCount(t *testing.T) {
	t.Parallel()

	sc := &Scenario{Steps: []Step{
		{Actions: make([]Action, 3)},
		{Actions: make([]Action, 2), Skip: true},
		{Actions: make([]Action, 1)},
	}}
	assert.Equal(t, 4, sc.ActionCount())
}
