package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/flakerun/scenario"
)

func TestMetricsTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRun(true, 3*time.Second)
	m.ObserveRun(false, time.Second)
	m.ObserveRun(false, time.Second)
	m.ObserveAction(scenario.ActionNavigate, nil, 200*time.Millisecond)
	m.ObserveAction(scenario.ActionAssertTitle, errors.New("mismatch"), time.Millisecond)

	fs := afero.NewMemMapFs()
	require.NoError(t, m.WriteTextfile(fs, "/out/metrics.prom"))

	data, err := afero.ReadFile(fs, "/out/metrics.prom")
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# TYPE flakerun_runs_total counter")
	assert.Contains(t, text, `flakerun_runs_total{outcome="success"} 1`)
	assert.Contains(t, text, `flakerun_runs_total{outcome="failure"} 2`)
	assert.Contains(t, text, `flakerun_actions_total{action="navigate",outcome="success"} 1`)
	assert.Contains(t, text, `flakerun_actions_total{action="assertTitle",outcome="failure"} 1`)
	assert.Contains(t, text, `flakerun_action_duration_seconds_count{action="navigate"} 1`)
	assert.Contains(t, text, "flakerun_run_duration_seconds_count 3")
	assert.Contains(t, text, "flakerun_run_duration_seconds_sum 5")
}

func TestMetricsNil(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun(true, time.Second)
		m.ObserveAction(scenario.ActionClick, nil, time.Second)
	})
}

func TestMetricsGather(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveRun(true, time.Second)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "flakerun_runs_total")
	assert.Contains(t, names, "flakerun_run_duration_seconds")
}
