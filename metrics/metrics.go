// Package metrics keeps Prometheus counters and histograms of a batch and
// writes them in the text exposition format.
package metrics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"

	"github.com/liuxd6825/flakerun/lib/fsext"
	"github.com/liuxd6825/flakerun/scenario"
)

const namespace = "flakerun"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors of a batch in a private registry. A nil
// *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of finished runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a run, browser launch included.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Number of executed actions by type and outcome.",
		}, []string{"action", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Time spent executing an action.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}

	m.registry.MustRegister(m.runs, m.runDuration, m.actions, m.actionDuration)
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome(success)).Inc()
	m.runDuration.Observe(d.Seconds())
}

// ObserveAction records an executed action.
func (m *Metrics) ObserveAction(tag scenario.ActionTag, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(string(tag), outcome(err == nil)).Inc()
	m.actionDuration.WithLabelValues(string(tag)).Observe(d.Seconds())
}

// WriteTextfile writes every collected metric to path.
func (m *Metrics) WriteTextfile(fs afero.Fs, path string) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metric %s: %w", mf.GetName(), err)
		}
	}

	return fsext.WriteFileAll(fs, path, buf.Bytes())
}
