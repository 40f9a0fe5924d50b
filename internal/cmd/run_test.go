package cmd

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liuxd6825/flakerun/cmd/state"
	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/errext/exitcodes"
	"github.com/liuxd6825/flakerun/execution"
	"github.com/liuxd6825/flakerun/internal/cmd/tests"
	"github.com/liuxd6825/flakerun/internal/sessiontest"
	"github.com/liuxd6825/flakerun/lib/fsext"
	"github.com/liuxd6825/flakerun/log"
)

const (
	exampleURL   = "https://example.test"
	exampleTitle = "amp-list - Example Search"

	scenarioPath = "/test/scenario.yaml"
	outputRoot   = "/test/out"

	searchScenario = `
name: search
steps:
  - name: Search
    actions:
      - type: navigate
        value: https://example.test
      - type: assertTitle
        expected: {equals: "amp-list - Example Search"}
`
)

// fakeBrowser hands out in-memory sessions. The pages of the runs listed in
// wrongTitle get a different title.
type fakeBrowser struct {
	mu         sync.Mutex
	launches   int
	wrongTitle map[int]bool
	conf       Config
	sessions   []*sessiontest.Session
}

func (f *fakeBrowser) factory(_ *state.GlobalState, conf Config, _ *log.Logger) (execution.Launcher, error) {
	f.conf = conf
	return execution.LauncherFunc(f.launch), nil
}

func (f *fakeBrowser) launch(ctx context.Context) (common.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.launches++
	wrong := f.wrongTitle[f.launches]

	s := sessiontest.NewSession()
	s.Main().OnNavigate = func(c *sessiontest.Context, url string) error {
		c.TitleText = exampleTitle
		if wrong || url != exampleURL {
			c.TitleText = "Example Domain"
		}
		return nil
	}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newTestRootCommand(ts *tests.GlobalTestState, newLauncher launcherFactory) *rootCommand {
	run := &cmdRun{gs: ts.GlobalState, newLauncher: newLauncher, sleep: noSleep}
	return newRootCommand(ts.GlobalState, run.command(), getCmdVersion(ts.GlobalState))
}

func newRunTestState(t *testing.T, args ...string) *tests.GlobalTestState {
	t.Helper()

	ts := tests.NewGlobalTestState(t)
	require.NoError(t, fsext.WriteFileAll(ts.FS, scenarioPath, []byte(searchScenario)))
	ts.CmdArgs = append([]string{"flakerun", "run"}, args...)
	return ts
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestRunAllSucceed(t *testing.T) {
	t.Parallel()

	ts := newRunTestState(t, "-r", "3", "-o", outputRoot, scenarioPath)
	fb := &fakeBrowser{}
	newTestRootCommand(ts, fb.factory).execute()

	assert.Equal(t, 3, fb.launches)
	for _, s := range fb.sessions {
		assert.Equal(t, 1, s.Closes())
	}
	assert.Equal(t, "success: 3/3 (100%)\n1. Success\n2. Success\n3. Success\n",
		readFile(t, ts.FS, outputRoot+"/report.txt"))

	stdout := ts.Stdout.String()
	assert.Contains(t, stdout, "search")
	assert.Contains(t, stdout, "success: 3/3 (100%)")
	assert.Contains(t, stdout, "artifacts: "+outputRoot)
	assert.NotContains(t, stdout, "\x1b[", "stdout is not a TTY")

	for _, dir := range []string{"run-1", "run-2", "run-3"} {
		ok, err := afero.DirExists(ts.FS, outputRoot+"/"+dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
	exists, err := afero.Exists(ts.FS, outputRoot+"/"+metricsFileName)
	require.NoError(t, err)
	assert.False(t, exists, "metrics are off by default")
}

func TestRunSomeFail(t *testing.T) {
	t.Parallel()

	ts := newRunTestState(t, "--runs=3", "--output", outputRoot, "--metrics", scenarioPath)
	ts.ExpectedExitCode = int(exitcodes.RunsFailed)
	fb := &fakeBrowser{wrongTitle: map[int]bool{2: true}}
	newTestRootCommand(ts, fb.factory).execute()

	report := readFile(t, ts.FS, outputRoot+"/report.txt")
	assert.Contains(t, report, "success: 2/3 (67%)\n1. Success\n2. Error: step 1 (Search), action 2 assertTitle")
	assert.Contains(t, report, "\n3. Success\n")

	assert.True(t, ts.LoggerHook.Contains(logrus.ErrorLevel, "1 of 3 runs failed"))

	prom := readFile(t, ts.FS, outputRoot+"/"+metricsFileName)
	assert.Contains(t, prom, `flakerun_runs_total{outcome="success"} 2`)
	assert.Contains(t, prom, `flakerun_runs_total{outcome="failure"} 1`)
}

func TestRunQuiet(t *testing.T) {
	t.Parallel()

	ts := newRunTestState(t, "-q", "-o", outputRoot, scenarioPath)
	fb := &fakeBrowser{}
	newTestRootCommand(ts, fb.factory).execute()

	assert.Empty(t, ts.Stdout.String())
	assert.Equal(t, "success: 1/1 (100%)\n1. Success\n", readFile(t, ts.FS, outputRoot+"/report.txt"))
}

func TestRunConsolidatesConfig(t *testing.T) {
	t.Parallel()

	ts := newRunTestState(t, "--headless=false", "--timeout", "2s", "--browser-arg", "lang=en", scenarioPath)
	ts.Env["FLAKERUN_RUNS"] = "2"
	ts.Env["FLAKERUN_OUTPUT"] = outputRoot
	fb := &fakeBrowser{}
	newTestRootCommand(ts, fb.factory).execute()

	assert.Equal(t, 2, fb.launches)
	assert.False(t, fb.conf.Headless.Bool)
	assert.Equal(t, "2s", fb.conf.Timeout.String)
	assert.Equal(t, []string{"lang=en"}, fb.conf.BrowserArgs)

	opts := launchOptionsFromConfig(fb.conf)
	assert.False(t, opts.Headless)
	assert.Equal(t, common.DefaultTimeout, opts.Timeout)
	assert.Equal(t, []string{"lang=en"}, opts.Args)
	assert.Equal(t, int64(common.DefaultScreenWidth), opts.WindowWidth)

	assert.Equal(t, "success: 2/2 (100%)\n1. Success\n2. Success\n", readFile(t, ts.FS, outputRoot+"/report.txt"))
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		args     []string
		env      map[string]string
		launcher launcherFactory
		exitCode exitcodes.ExitCode
		logMsg   string
	}{
		{
			name:     "missing_scenario",
			args:     []string{"/test/missing.yaml"},
			exitCode: exitcodes.InvalidScenario,
			logMsg:   "couldn't read scenario file",
		},
		{
			name:     "zero_runs",
			args:     []string{"-r", "0", scenarioPath},
			exitCode: exitcodes.InvalidConfig,
			logMsg:   "runs must be at least 1",
		},
		{
			name:     "bad_env",
			args:     []string{scenarioPath},
			env:      map[string]string{"FLAKERUN_WINDOW_WIDTH": "wide"},
			exitCode: exitcodes.InvalidConfig,
		},
		{
			name: "no_browser",
			args: []string{scenarioPath},
			launcher: func(*state.GlobalState, Config, *log.Logger) (execution.Launcher, error) {
				return nil, errors.New("chromium not found")
			},
			exitCode: exitcodes.BrowserLaunch,
			logMsg:   "chromium not found",
		},
		{
			name:     "bad_traces_output",
			args:     []string{"--traces-output", "zipkin", scenarioPath},
			exitCode: exitcodes.InvalidConfig,
			logMsg:   "traces output",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := newRunTestState(t, tc.args...)
			for k, v := range tc.env {
				ts.Env[k] = v
			}
			ts.ExpectedExitCode = int(tc.exitCode)
			fb := &fakeBrowser{}
			launcher := tc.launcher
			if launcher == nil {
				launcher = fb.factory
			}
			newTestRootCommand(ts, launcher).execute()

			assert.Zero(t, fb.launches)
			if tc.logMsg != "" {
				assert.True(t, ts.LoggerHook.Contains(logrus.ErrorLevel, tc.logMsg))
			}
		})
	}
}

func TestRunReportWriteFails(t *testing.T) {
	t.Parallel()

	ts := newRunTestState(t, "-o", outputRoot, scenarioPath)
	ts.FS = afero.NewReadOnlyFs(ts.FS)
	ts.ExpectedExitCode = int(exitcodes.ReportWrite)
	fb := &fakeBrowser{}
	newTestRootCommand(ts, fb.factory).execute()

	assert.Zero(t, fb.launches, "the run directories can't be created either")
	assert.True(t, ts.LoggerHook.Contains(logrus.ErrorLevel, "write report"))
}

func TestRunInterrupted(t *testing.T) {
	t.Parallel()

	ts := newRunTestState(t, "-r", "2", "-o", outputRoot, scenarioPath)
	ts.ExpectedExitCode = int(exitcodes.ExternalAbort)
	ts.Cancel()
	fb := &fakeBrowser{}
	newTestRootCommand(ts, fb.factory).execute()

	assert.Zero(t, fb.launches)
	report := readFile(t, ts.FS, outputRoot+"/report.txt")
	assert.Contains(t, report, "success: 0/2 (0%)")
	assert.Contains(t, report, "1. Error: ")
	assert.True(t, ts.LoggerHook.Contains(logrus.ErrorLevel, "batch interrupted by signal"))
}
