// Package execution runs a scenario against fresh browser sessions, once
// per run of a batch, and collects the results.
package execution

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/liuxd6825/flakerun/actions"
	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/lib/fsext"
	"github.com/liuxd6825/flakerun/log"
	"github.com/liuxd6825/flakerun/metrics"
	"github.com/liuxd6825/flakerun/scenario"
	"github.com/liuxd6825/flakerun/trace"
)

// Launcher starts a browser session.
type Launcher interface {
	Launch(ctx context.Context) (common.Session, error)
}

// LauncherFunc adapts a function to a Launcher.
type LauncherFunc func(ctx context.Context) (common.Session, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context) (common.Session, error) {
	return f(ctx)
}

// Orchestrator executes batches of runs. Runs are strictly sequential and
// every run gets its own session and output directory.
type Orchestrator struct {
	Launcher   Launcher
	Dispatcher *actions.Dispatcher
	FS         afero.Fs
	Logger     *log.Logger
	Timeouts   *common.TimeoutSettings
	Tracer     *trace.Tracer
	Metrics    *metrics.Metrics
	Sleep      SleepFunc

	DiagnosticsTimeout time.Duration
	// NewBatchID defaults to a random UUID.
	NewBatchID func() string
}

// RunDir returns the output directory of run i.
func RunDir(outputRoot string, i int) string {
	return filepath.Join(outputRoot, fmt.Sprintf("run-%d", i))
}

// ExecuteBatch runs sc runCount times. It never fails: every run ends up in
// the result, in order, whatever happened to it.
func (o *Orchestrator) ExecuteBatch(
	ctx context.Context, sc *scenario.Scenario, runCount int, outputRoot string,
) *BatchResult {
	if runCount < 0 {
		runCount = 0
	}

	batch := &BatchResult{
		ID:       o.batchID(),
		Scenario: sc.Name,
		Runs:     make([]RunResult, 0, runCount),
		Started:  time.Now(),
	}
	logger := o.logger().WithFields(logrus.Fields{"batch": batch.ID})
	logger.Infof("batch", "Starting %d runs of %q", runCount, sc.Name)

	exec := &StepExecutor{
		Dispatcher:         o.dispatcher(),
		Timeouts:           o.Timeouts,
		Tracer:             o.tracer(),
		Metrics:            o.Metrics,
		Sleep:              o.Sleep,
		InterActionDelay:   sc.InterActionDelay,
		InterStepDelay:     sc.InterStepDelay,
		DiagnosticsTimeout: o.DiagnosticsTimeout,
	}
	for i := 1; i <= runCount; i++ {
		batch.add(o.executeRun(ctx, exec, sc, i, outputRoot, logger))
	}

	batch.Duration = time.Since(batch.Started)
	logger.Infof("batch", "Finished in %s, %s", batch.Duration.Round(time.Millisecond), batch.Summary())
	return batch
}

func (o *Orchestrator) executeRun(
	ctx context.Context, exec *StepExecutor, sc *scenario.Scenario, i int, outputRoot string, batchLogger *log.Logger,
) (res RunResult) {
	start := time.Now()
	rc := &RunContext{
		RunIndex:  i,
		OutputDir: RunDir(outputRoot, i),
		FS:        o.fs(),
		Logger:    batchLogger.ForRun(i),
	}
	res = RunResult{RunIndex: i, OutputDir: rc.OutputDir}

	ctx, span := exec.Tracer.TraceRun(ctx, i)

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run %d panicked: %v", i, r)
			rc.Logger.Errorf("run", "%s\n%s", err, debug.Stack())
		}

		res.Duration = time.Since(start)
		res.Artifacts = rc.Artifacts()
		if err != nil {
			res.Outcome, res.Err = Failure, err
			rc.Logger.Errorf("run", "Run %d failed: %s", i, err)
		} else {
			res.Outcome = Success
			rc.Logger.Infof("run", "Run %d succeeded", i)
		}
		o.Metrics.ObserveRun(err == nil, res.Duration)
		trace.End(span, err)
	}()

	err = o.run(ctx, exec, sc, rc)
	return res
}

func (o *Orchestrator) run(ctx context.Context, exec *StepExecutor, sc *scenario.Scenario, rc *RunContext) error {
	if err := rc.FS.MkdirAll(rc.OutputDir, fsext.DirPerm); err != nil {
		return &common.IOError{Op: "create output directory", Path: rc.OutputDir, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run aborted before it started: %w", err)
	}

	rc.Logger.Infof("run", "Run %d: launching browser", rc.RunIndex)
	session, err := o.Launcher.Launch(ctx)
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	if session == nil {
		return errors.New("launching browser: no session")
	}
	rc.Session = session
	defer func() {
		if cerr := session.Close(); cerr != nil {
			rc.Logger.Warnf("run", "closing browser: %s", cerr)
		}
	}()

	for idx, step := range sc.Steps {
		if err := exec.RunStep(ctx, rc, idx, step); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) batchID() string {
	if o.NewBatchID != nil {
		return o.NewBatchID()
	}
	return uuid.NewString()
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger == nil {
		return log.NewNullLogger()
	}
	return o.Logger
}

func (o *Orchestrator) fs() afero.Fs {
	if o.FS == nil {
		return afero.NewOsFs()
	}
	return o.FS
}

func (o *Orchestrator) dispatcher() *actions.Dispatcher {
	if o.Dispatcher == nil {
		return actions.NewDispatcher()
	}
	return o.Dispatcher
}

func (o *Orchestrator) tracer() *trace.Tracer {
	if o.Tracer == nil {
		return trace.NewNoopTracer()
	}
	return o.Tracer
}
