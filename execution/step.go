package execution

import (
	"context"
	"strconv"
	"time"

	"github.com/liuxd6825/flakerun/actions"
	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/metrics"
	"github.com/liuxd6825/flakerun/scenario"
	"github.com/liuxd6825/flakerun/trace"
)

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// StepExecutor runs the actions of a step in order and stops at the first
// failing one.
type StepExecutor struct {
	Dispatcher *actions.Dispatcher
	Timeouts   *common.TimeoutSettings
	Tracer     *trace.Tracer
	Metrics    *metrics.Metrics
	Sleep      SleepFunc

	// InterActionDelay is waited after every successful action, in addition
	// to its own SleepAfter.
	InterActionDelay time.Duration
	// InterStepDelay is waited after every successful step.
	InterStepDelay time.Duration
	// DiagnosticsTimeout bounds every screenshot and DOM dump.
	DiagnosticsTimeout time.Duration
}

func (e *StepExecutor) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	return common.Sleep(ctx, d)
}

func (e *StepExecutor) tracer() *trace.Tracer {
	if e.Tracer == nil {
		return trace.NewNoopTracer()
	}
	return e.Tracer
}

func (e *StepExecutor) diagnostics(rc *RunContext) *Diagnostics {
	return &Diagnostics{FS: rc.FS, Logger: rc.Logger, Timeout: e.DiagnosticsTimeout}
}

// RunStep executes step, the index-th step of its scenario. Steps are
// numbered from 1 in logs and artifact names and skipped steps keep their
// number. On failure the page is captured and a *StepError is returned.
func (e *StepExecutor) RunStep(ctx context.Context, rc *RunContext, index int, step scenario.Step) (err error) {
	n := index + 1
	if step.Skip {
		rc.Logger.Infof("step", "Step %d: %s (skipped)", n, step.Name)
		return nil
	}
	rc.Logger.Infof("step", "Step %d: %s", n, step.Name)

	ctx, span := e.tracer().TraceStep(ctx, n, step.Name)
	defer func() { trace.End(span, err) }()

	env := &actions.Env{
		Session:   rc.Session,
		FS:        rc.FS,
		OutputDir: rc.OutputDir,
		Timeouts:  e.Timeouts,
		Logger:    rc.Logger,
	}
	for i, a := range step.Actions {
		if aerr := e.runAction(ctx, env, rc, a); aerr != nil {
			rc.Logger.Errorf("step", "Step %d: %s failed: %s", n, step.Name, aerr)
			rc.AddArtifacts(e.diagnostics(rc).Capture(ctx, rc.Session, rc.OutputDir, strconv.Itoa(n))...)
			return &StepError{Step: n, Name: step.Name, Action: i + 1, Tag: a.Type, Label: a.Label, Err: aerr}
		}
	}

	if err := e.sleep(ctx, e.InterStepDelay); err != nil {
		return &StepError{Step: n, Name: step.Name, Err: err}
	}
	e.captureBoundary(ctx, rc, n, step)
	return nil
}

func (e *StepExecutor) runAction(ctx context.Context, env *actions.Env, rc *RunContext, a scenario.Action) error {
	rc.Logger.Debugf("action", "action: %s", a.Name())

	actx, span := e.tracer().TraceAction(ctx, a)
	start := time.Now()
	out, err := e.Dispatcher.Execute(actx, env, a)
	e.Metrics.ObserveAction(a.Type, err, time.Since(start))
	trace.End(span, err)
	if err != nil {
		return err
	}

	if out.Message != "" {
		rc.Logger.Infof("action", "%s: %s", a.Name(), out.Message)
	}
	rc.AddArtifacts(out.Artifacts...)
	if out.SwitchTo != nil {
		env.Frame = out.SwitchTo
	}

	return e.sleep(ctx, a.SleepAfter+e.InterActionDelay)
}

// captureBoundary saves the artifacts of a successful step. They are best
// effort, a failure is only logged.
func (e *StepExecutor) captureBoundary(ctx context.Context, rc *RunContext, n int, step scenario.Step) {
	d := e.diagnostics(rc)
	tag := strconv.Itoa(n)

	if path, err := d.Screenshot(ctx, rc.Session, rc.OutputDir, tag); err != nil {
		rc.Logger.Warnf("step", "Step %d: %s", n, err)
	} else {
		rc.AddArtifacts(path)
	}

	if !step.CaptureHTMLOnSuccess {
		return
	}
	if path, err := d.DOM(ctx, rc.Session, rc.OutputDir, tag); err != nil {
		rc.Logger.Warnf("step", "Step %d: %s", n, err)
	} else {
		rc.AddArtifacts(path)
	}
}
