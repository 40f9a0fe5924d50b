package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/errext"
	"github.com/liuxd6825/flakerun/errext/exitcodes"
	"github.com/liuxd6825/flakerun/internal/cmd/tests"
	"github.com/liuxd6825/flakerun/lib/fsext"
)

func TestConfigApply(t *testing.T) {
	t.Parallel()

	base := newConfigDefaults()
	conf := base.Apply(Config{Runs: null.IntFrom(5), BrowserArgs: []string{"lang=en"}})
	assert.Equal(t, null.IntFrom(5), conf.Runs)
	assert.Equal(t, []string{"lang=en"}, conf.BrowserArgs)
	assert.Equal(t, defaultOutputRoot, conf.Output.String)
	assert.True(t, conf.Headless.Bool)

	// invalid values never override
	conf = conf.Apply(Config{Runs: null.NewInt(0, false), Headless: null.NewBool(false, false)})
	assert.Equal(t, int64(5), conf.Runs.Int64)
	assert.True(t, conf.Headless.Bool)
	assert.Equal(t, []string{"lang=en"}, conf.BrowserArgs)
}

func TestConfigTimeouts(t *testing.T) {
	t.Parallel()

	conf := newConfigDefaults()
	d, err := conf.ElementTimeout()
	require.NoError(t, err)
	assert.Equal(t, common.DefaultTimeout, d)

	conf.Timeout = null.StringFrom("5s")
	d, err = conf.NavTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d, "navigation falls back to the element timeout")

	conf.NavigationTimeout = null.StringFrom("1m")
	d, err = conf.NavTimeout()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	conf.Timeout = null.StringFrom("soon")
	_, err = conf.ElementTimeout()
	require.ErrorContains(t, err, `invalid timeout "soon"`)

	conf.Timeout = null.StringFrom("-1s")
	_, err = conf.ElementTimeout()
	require.ErrorContains(t, err, "must be positive")
}

func TestReadEnvConfig(t *testing.T) {
	t.Parallel()

	conf, err := readEnvConfig(map[string]string{
		"FLAKERUN_RUNS":         "7",
		"FLAKERUN_OUTPUT":       "/tmp/out",
		"FLAKERUN_HEADLESS":     "false",
		"FLAKERUN_TIMEOUT":      "3s",
		"FLAKERUN_BROWSER_ARGS": "lang=en,mute-audio",
		"UNRELATED":             "x",
	})
	require.NoError(t, err)
	assert.Equal(t, null.IntFrom(7), conf.Runs)
	assert.Equal(t, null.StringFrom("/tmp/out"), conf.Output)
	assert.Equal(t, null.BoolFrom(false), conf.Headless)
	assert.Equal(t, null.StringFrom("3s"), conf.Timeout)
	assert.Equal(t, []string{"lang=en", "mute-audio"}, conf.BrowserArgs)
	assert.False(t, conf.Metrics.Valid)

	_, err = readEnvConfig(map[string]string{"FLAKERUN_RUNS": "many"})
	require.Error(t, err)
}

func TestReadDiskConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing_default_file", func(t *testing.T) {
		t.Parallel()
		ts := tests.NewGlobalTestState(t)
		conf, err := readDiskConfig(ts.GlobalState)
		require.NoError(t, err)
		assert.Equal(t, Config{}, conf)
	})

	t.Run("missing_explicit_file", func(t *testing.T) {
		t.Parallel()
		ts := tests.NewGlobalTestState(t)
		ts.Flags.ConfigFilePath = "/test/nope.json"
		_, err := readDiskConfig(ts.GlobalState)
		require.ErrorContains(t, err, "couldn't load the configuration")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		ts := tests.NewGlobalTestState(t)
		require.NoError(t, fsext.WriteFileAll(ts.FS, ts.Flags.ConfigFilePath,
			[]byte(`{"runs": 4, "output": "/data", "metrics": true, "timeout": "10s"}`)))
		conf, err := readDiskConfig(ts.GlobalState)
		require.NoError(t, err)
		assert.Equal(t, null.IntFrom(4), conf.Runs)
		assert.Equal(t, null.StringFrom("/data"), conf.Output)
		assert.Equal(t, null.BoolFrom(true), conf.Metrics)
		assert.Equal(t, null.StringFrom("10s"), conf.Timeout)
		assert.False(t, conf.Headless.Valid)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		ts := tests.NewGlobalTestState(t)
		ts.Flags.ConfigFilePath = "/test/flakerun.yaml"
		require.NoError(t, fsext.WriteFileAll(ts.FS, ts.Flags.ConfigFilePath, []byte(
			"runs: 2\nheadless: false\nbrowserArgs:\n  - lang=de\nwindowWidth: 800\n")))
		conf, err := readDiskConfig(ts.GlobalState)
		require.NoError(t, err)
		assert.Equal(t, null.IntFrom(2), conf.Runs)
		assert.Equal(t, null.BoolFrom(false), conf.Headless)
		assert.Equal(t, []string{"lang=de"}, conf.BrowserArgs)
		assert.Equal(t, null.IntFrom(800), conf.WindowWidth)
	})

	t.Run("empty_yaml", func(t *testing.T) {
		t.Parallel()
		ts := tests.NewGlobalTestState(t)
		ts.Flags.ConfigFilePath = "/test/empty.yml"
		require.NoError(t, fsext.WriteFileAll(ts.FS, ts.Flags.ConfigFilePath, nil))
		conf, err := readDiskConfig(ts.GlobalState)
		require.NoError(t, err)
		assert.Equal(t, Config{}, conf)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		ts := tests.NewGlobalTestState(t)
		require.NoError(t, fsext.WriteFileAll(ts.FS, ts.Flags.ConfigFilePath, []byte(`{"runs": "x"`)))
		_, err := readDiskConfig(ts.GlobalState)
		require.ErrorContains(t, err, "couldn't parse the configuration")
	})
}

func TestGetConsolidatedConfig(t *testing.T) {
	t.Parallel()

	ts := tests.NewGlobalTestState(t)
	ts.Flags.ConfigFilePath = "/test/flakerun.yaml"
	require.NoError(t, fsext.WriteFileAll(ts.FS, ts.Flags.ConfigFilePath,
		[]byte("runs: 4\noutput: /from-file\nmetrics: true\n")))
	ts.Env["FLAKERUN_RUNS"] = "2"
	ts.Env["FLAKERUN_OUTPUT"] = "/from-env"

	flags := configFlagSet()
	require.NoError(t, flags.Parse([]string{"-r", "3"}))
	cliConf, err := getConfig(flags)
	require.NoError(t, err)

	conf, err := getConsolidatedConfig(ts.GlobalState, cliConf)
	require.NoError(t, err)
	assert.Equal(t, int64(3), conf.Runs.Int64)
	assert.Equal(t, "/from-env", conf.Output.String)
	assert.True(t, conf.Metrics.Bool)
	assert.True(t, conf.Headless.Bool)
	assert.Equal(t, int64(common.DefaultScreenWidth), conf.WindowWidth.Int64)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		modify func(c *Config)
		errMsg string
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "zero_runs", modify: func(c *Config) { c.Runs = null.IntFrom(0) }, errMsg: "runs must be at least 1"},
		{name: "negative_runs", modify: func(c *Config) { c.Runs = null.IntFrom(-3) }, errMsg: "got -3"},
		{name: "empty_output", modify: func(c *Config) { c.Output = null.StringFrom("  ") }, errMsg: "output directory"},
		{name: "window", modify: func(c *Config) { c.WindowWidth = null.IntFrom(0) }, errMsg: "invalid window size 0x720"},
		{name: "timeout", modify: func(c *Config) { c.NavigationTimeout = null.StringFrom("x") }, errMsg: "navigation timeout"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			conf := newConfigDefaults()
			tc.modify(&conf)
			err := validateConfig(conf)
			if tc.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.errMsg)

			var ecerr errext.HasExitCode
			require.ErrorAs(t, err, &ecerr)
			assert.Equal(t, exitcodes.InvalidConfig, ecerr.ExitCode())
		})
	}
}
