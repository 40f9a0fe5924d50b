package scenario

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchScenario = `
name: search
interActionDelayMs: 500
interStepDelayMs: 1000
steps:
  - name: Search
    captureHtmlOnSuccess: true
    actions:
      - type: navigate
        value: https://example.test
        sleepAfterMs: 1000
        label: open
      - type: assertTitle
        expected: {equals: "amp-list - Example Search"}
      - type: assertText
        target: h1
        frame: 1
        expected: {pattern: "amp-(list|bind)"}
      - type: switchFrame
        frame: results
  - name: Legacy
    skip: true
    outputHtmlToFile: true
    actions:
      - type: teleport
`

func TestParse(t *testing.T) {
	t.Parallel()

	sc, err := Parse([]byte(searchScenario))
	require.NoError(t, err)

	assert.Equal(t, "search", sc.Name)
	assert.Equal(t, 500*time.Millisecond, sc.InterActionDelay)
	assert.Equal(t, time.Second, sc.InterStepDelay)
	require.Len(t, sc.Steps, 2)

	search := sc.Steps[0]
	assert.Equal(t, "Search", search.Name)
	assert.True(t, search.CaptureHTMLOnSuccess)
	assert.False(t, search.Skip)
	require.Len(t, search.Actions, 4)

	nav := search.Actions[0]
	assert.Equal(t, ActionNavigate, nav.Type)
	assert.Equal(t, "https://example.test", nav.Value)
	assert.Equal(t, time.Second, nav.SleepAfter)
	assert.Equal(t, "open", nav.Label)
	assert.Nil(t, nav.Frame)
	assert.Nil(t, nav.Expected)

	title := search.Actions[1]
	require.NotNil(t, title.Expected)
	assert.Equal(t, MatchExact, title.Expected.Kind)
	assert.True(t, title.Expected.Match("amp-list - Example Search"))

	text := search.Actions[2]
	require.NotNil(t, text.Frame)
	assert.Equal(t, FrameIndex(1), text.Frame)
	require.NotNil(t, text.Expected)
	assert.Equal(t, MatchPattern, text.Expected.Kind)
	assert.True(t, text.Expected.Match("amp-bind"))

	assert.Equal(t, FrameName("results"), search.Actions[3].Frame)

	legacy := sc.Steps[1]
	assert.True(t, legacy.Skip)
	assert.True(t, legacy.CaptureHTMLOnSuccess)
	assert.Equal(t, ActionTag("teleport"), legacy.Actions[0].Type)
	assert.False(t, legacy.Actions[0].Type.Valid())
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	sc, err := Parse([]byte(`{
		"name": "json",
		"steps": [{"name": "s", "actions": [
			{"type": "assertText", "target": "p", "frame": "ads", "expected": {"equals": "42"}},
			{"type": "switchFrame", "frame": 0}
		]}]
	}`))
	require.NoError(t, err)
	require.Len(t, sc.Steps[0].Actions, 2)
	assert.Equal(t, FrameName("ads"), sc.Steps[0].Actions[0].Frame)
	assert.Equal(t, FrameIndex(0), sc.Steps[0].Actions[1].Frame)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"empty", ``, "scenario is empty"},
		{"unknown_field", "steps:\n  - name: a\n    actoins: []\n", "actoins"},
		{"missing_type", "steps:\n  - actions:\n      - target: a\n", "type is required"},
		{"both_matchers", "steps:\n  - actions:\n      - type: assertTitle\n        expected: {equals: a, pattern: b}\n", "only one of"},
		{"no_matcher", "steps:\n  - actions:\n      - type: assertTitle\n        expected: {}\n", "equals or pattern"},
		{"bad_pattern", "steps:\n  - actions:\n      - type: assertTitle\n        expected: {pattern: \"(\"}\n", "invalid pattern"},
		{"negative_frame", "steps:\n  - actions:\n      - type: switchFrame\n        frame: -1\n", "must not be negative"},
		{"frame_list", "steps:\n  - actions:\n      - type: switchFrame\n        frame: [1]\n", "index or a name"},
		{"negative_sleep", "steps:\n  - actions:\n      - type: click\n        sleepAfterMs: -5\n", "sleepAfterMs"},
		{"negative_delay", "interStepDelayMs: -1\n", "negative"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/scenarios/search.yaml", []byte(searchScenario), 0o644))

	sc, err := Load(fs, "/scenarios/search.yaml")
	require.NoError(t, err)
	assert.Equal(t, "search", sc.Name)

	_, err = Load(fs, "/scenarios/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't read scenario file")

	require.NoError(t, afero.WriteFile(fs, "/scenarios/bad.yaml", []byte("steps: 3\n"), 0o644))
	_, err = Load(fs, "/scenarios/bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario file")
}
