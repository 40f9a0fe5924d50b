package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/liuxd6825/flakerun/cmd/state"
	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/errext"
	"github.com/liuxd6825/flakerun/errext/exitcodes"
	"github.com/liuxd6825/flakerun/execution"
	"github.com/liuxd6825/flakerun/log"
	"github.com/liuxd6825/flakerun/metrics"
	"github.com/liuxd6825/flakerun/report"
	"github.com/liuxd6825/flakerun/scenario"
	"github.com/liuxd6825/flakerun/trace"
)

const (
	metricsFileName       = "metrics.prom"
	traceShutdownTimeout  = 5 * time.Second
	runCommandDescription = "Run a scenario a number of times and report how often it succeeded"
)

// cmdRun handles the `flakerun run` sub-command
type cmdRun struct {
	gs *state.GlobalState

	newLauncher launcherFactory
	// sleep is the pause between steps and actions, nil means a real sleep.
	sleep execution.SleepFunc
}

func (c *cmdRun) run(cmd *cobra.Command, args []string) (err error) {
	cliConf, err := getConfig(cmd.Flags())
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	conf, err := getConsolidatedConfig(c.gs, cliConf)
	if err != nil {
		return err
	}

	sc, err := scenario.Load(c.gs.FS, args[0])
	if err != nil {
		return errext.WithExitCodeIfNone(
			errext.WithHint(err, "see the scenario format with `flakerun run --help`"),
			exitcodes.InvalidScenario,
		)
	}

	logger := log.New(c.gs.Logger, nil)
	launcher, err := c.newLauncher(c.gs, conf, logger)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.BrowserLaunch)
	}

	batchID := uuid.NewString()
	tp, err := trace.TracerProviderFromConfigLine(c.gs.Ctx, c.gs.Flags.TracesOutput)
	if err != nil {
		return errext.WithExitCodeIfNone(fmt.Errorf("traces output: %w", err), exitcodes.InvalidConfig)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), traceShutdownTimeout)
		defer cancel()
		if serr := tp.Shutdown(ctx); serr != nil {
			c.gs.Logger.WithError(serr).Warn("Failed to flush the traces")
		}
	}()

	var m *metrics.Metrics
	if conf.Metrics.Bool {
		m = metrics.New()
	}

	orch, err := c.newOrchestrator(conf, launcher, logger, m)
	if err != nil {
		return err
	}
	orch.Tracer = trace.NewTracer(tp, map[string]string{
		"batch.id": batchID,
		"scenario": sc.Name,
	})
	orch.NewBatchID = func() string { return batchID }

	runCtx, runCancel := context.WithCancel(c.gs.Ctx)
	defer runCancel()

	sigHandler := func(sig os.Signal) {
		c.gs.Logger.WithField("sig", sig).Info("Stopping the batch in response to signal...")
		runCancel()
	}
	onHardStop := func(sig os.Signal) {
		c.gs.Logger.WithField("sig", sig).Error("Aborting flakerun in response to signal")
	}
	stopSignalHandling := handleRunAbortSignals(c.gs, sigHandler, onHardStop)
	defer stopSignalHandling()

	outputRoot := conf.Output.String
	batch := orch.ExecuteBatch(runCtx, sc, int(conf.Runs.Int64), outputRoot)

	reportPath, err := report.Write(c.gs.FS, outputRoot, batch)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.ReportWrite)
	}
	c.gs.Logger.WithFields(logrus.Fields{"batch": batch.ID, "path": reportPath}).Debug("Report written")

	if m != nil {
		path := filepath.Join(outputRoot, metricsFileName)
		if merr := m.WriteTextfile(c.gs.FS, path); merr != nil {
			c.gs.Logger.WithError(merr).Warn("Failed to write the metrics")
		}
	}

	if !c.gs.Flags.Quiet {
		console := report.ConsoleReporter{
			NoColor:    c.gs.Flags.NoColor || !c.gs.Stdout.IsTTY,
			OutputRoot: outputRoot,
		}
		if rerr := report.Report(console, c.gs.Stdout, batch); rerr != nil {
			c.gs.Logger.WithError(rerr).Warn("Failed to print the summary")
		}
	}

	if runCtx.Err() != nil {
		return &errext.InterruptError{Reason: errext.AbortedBySignal}
	}
	if failures := batch.Failures(); failures > 0 {
		return errext.WithExitCodeIfNone(
			fmt.Errorf("%d of %d runs failed", failures, batch.Total()),
			exitcodes.RunsFailed,
		)
	}
	return nil
}

func (c *cmdRun) newOrchestrator(
	conf Config, launcher execution.Launcher, logger *log.Logger, m *metrics.Metrics,
) (*execution.Orchestrator, error) {
	elementTimeout, err := conf.ElementTimeout()
	if err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	navTimeout, err := conf.NavTimeout()
	if err != nil {
		return nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	timeouts := common.NewTimeoutSettings(nil)
	timeouts.SetDefaultTimeout(elementTimeout)
	timeouts.SetDefaultNavigationTimeout(navTimeout)

	return &execution.Orchestrator{
		Launcher:           launcher,
		FS:                 c.gs.FS,
		Logger:             logger,
		Timeouts:           timeouts,
		Metrics:            m,
		Sleep:              c.sleep,
		DiagnosticsTimeout: common.DiagnosticsTimeout,
	}, nil
}

func (c *cmdRun) flagSet() *pflag.FlagSet {
	return configFlagSet()
}

func getCmdRun(gs *state.GlobalState) *cobra.Command {
	c := &cmdRun{
		gs:          gs,
		newLauncher: newChromiumLauncher,
	}
	return c.command()
}

func (c *cmdRun) command() *cobra.Command {
	exampleText := getExampleText(c.gs, `
  # Run a scenario once.
  {{.}} run scenario.yaml

  # Run it 20 times and keep the artifacts in ./flaky.
  {{.}} run -r 20 -o ./flaky scenario.yaml

  # Watch the browser while it runs.
  {{.}} run --headless=false scenario.yaml

  # Use a specific Chromium build and export spans to an OTLP collector.
  {{.}} run --executable-path /opt/chromium/chrome --traces-output=otel scenario.yaml`[1:])

	runCmd := &cobra.Command{
		Use:   "run [flags] <scenario>",
		Short: runCommandDescription,
		Long: runCommandDescription + `.

The scenario is a YAML file with a name, optional delays in milliseconds and a
list of steps, each holding a list of actions. Every run starts a fresh
browser, writes its screenshots and DOM dumps to <output>/run-<n>, and the
batch ends with <output>/report.txt.`,
		Example: exampleText,
		Args:    exactArgsWithMsg(1, "arg should either be the path to a scenario file"),
		RunE:    c.run,
	}

	runCmd.Flags().SortFlags = false
	runCmd.Flags().AddFlagSet(c.flagSet())
	must(cobra.MarkFlagFilename(runCmd.Flags(), "executable-path"))
	return runCmd
}
