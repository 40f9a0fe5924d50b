package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"

	"github.com/liuxd6825/flakerun/cmd/state"
	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/errext"
	"github.com/liuxd6825/flakerun/errext/exitcodes"
	"github.com/liuxd6825/flakerun/lib/fsext"
)

const defaultOutputRoot = "output"

// Config holds the options of a batch. Only Valid fields take part in the
// consolidation, so every layer overrides just what it sets.
type Config struct {
	Runs              null.Int    `json:"runs" envconfig:"FLAKERUN_RUNS"`
	Output            null.String `json:"output" envconfig:"FLAKERUN_OUTPUT"`
	Headless          null.Bool   `json:"headless" envconfig:"FLAKERUN_HEADLESS"`
	Timeout           null.String `json:"timeout" envconfig:"FLAKERUN_TIMEOUT"`
	NavigationTimeout null.String `json:"navigationTimeout" envconfig:"FLAKERUN_NAVIGATION_TIMEOUT"`
	ExecutablePath    null.String `json:"executablePath" envconfig:"FLAKERUN_EXECUTABLE_PATH"`
	BrowserArgs       []string    `json:"browserArgs" envconfig:"FLAKERUN_BROWSER_ARGS"`
	WindowWidth       null.Int    `json:"windowWidth" envconfig:"FLAKERUN_WINDOW_WIDTH"`
	WindowHeight      null.Int    `json:"windowHeight" envconfig:"FLAKERUN_WINDOW_HEIGHT"`
	Metrics           null.Bool   `json:"metrics" envconfig:"FLAKERUN_METRICS"`
}

// Apply the provided config on top of the current one, returning a new one.
// The provided config has priority over the current one.
func (c Config) Apply(cfg Config) Config {
	if cfg.Runs.Valid {
		c.Runs = cfg.Runs
	}
	if cfg.Output.Valid {
		c.Output = cfg.Output
	}
	if cfg.Headless.Valid {
		c.Headless = cfg.Headless
	}
	if cfg.Timeout.Valid {
		c.Timeout = cfg.Timeout
	}
	if cfg.NavigationTimeout.Valid {
		c.NavigationTimeout = cfg.NavigationTimeout
	}
	if cfg.ExecutablePath.Valid {
		c.ExecutablePath = cfg.ExecutablePath
	}
	if len(cfg.BrowserArgs) > 0 {
		c.BrowserArgs = cfg.BrowserArgs
	}
	if cfg.WindowWidth.Valid {
		c.WindowWidth = cfg.WindowWidth
	}
	if cfg.WindowHeight.Valid {
		c.WindowHeight = cfg.WindowHeight
	}
	if cfg.Metrics.Valid {
		c.Metrics = cfg.Metrics
	}
	return c
}

// ElementTimeout returns the parsed element timeout.
func (c Config) ElementTimeout() (time.Duration, error) {
	return parseNullDuration("timeout", c.Timeout, common.DefaultTimeout)
}

// NavTimeout returns the parsed navigation timeout. It falls back to the
// element timeout.
func (c Config) NavTimeout() (time.Duration, error) {
	def, err := c.ElementTimeout()
	if err != nil {
		return 0, err
	}
	return parseNullDuration("navigation timeout", c.NavigationTimeout, def)
}

func configFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Int64P("runs", "r", 1, "number of times the scenario is executed")
	flags.StringP("output", "o", defaultOutputRoot, "root directory of the per-run artifacts and the report")
	flags.Bool("headless", true, "run the browser without a window")
	flags.Duration("timeout", common.DefaultTimeout, "default timeout of element waits")
	flags.Duration("navigation-timeout", common.DefaultTimeout, "default timeout of navigations, defaults to --timeout")
	flags.String("executable-path", "", "path of the Chromium executable, searched in the PATH when empty")
	flags.StringArray("browser-arg", nil, "extra browser command line argument, e.g. --browser-arg=lang=en-US")
	flags.Int64("window-width", common.DefaultScreenWidth, "browser window and viewport width")
	flags.Int64("window-height", common.DefaultScreenHeight, "browser window and viewport height")
	flags.Bool("metrics", false, "write the Prometheus metrics of the batch to metrics.prom")
	return flags
}

func getConfig(flags *pflag.FlagSet) (Config, error) {
	browserArgs, err := flags.GetStringArray("browser-arg")
	if err != nil {
		return Config{}, err
	}
	return Config{
		Runs:              getNullInt64(flags, "runs"),
		Output:            getNullString(flags, "output"),
		Headless:          getNullBool(flags, "headless"),
		Timeout:           getNullDuration(flags, "timeout"),
		NavigationTimeout: getNullDuration(flags, "navigation-timeout"),
		ExecutablePath:    getNullString(flags, "executable-path"),
		BrowserArgs:       browserArgs,
		WindowWidth:       getNullInt64(flags, "window-width"),
		WindowHeight:      getNullInt64(flags, "window-height"),
		Metrics:           getNullBool(flags, "metrics"),
	}, nil
}

// newConfigDefaults returns the lowest layer of the consolidation.
func newConfigDefaults() Config {
	return Config{
		Runs:         null.NewInt(1, false),
		Output:       null.NewString(defaultOutputRoot, false),
		Headless:     null.NewBool(true, false),
		WindowWidth:  null.NewInt(common.DefaultScreenWidth, false),
		WindowHeight: null.NewInt(common.DefaultScreenHeight, false),
	}
}

// readDiskConfig reads the JSON or YAML config file. A missing file at the
// default location is not an error.
func readDiskConfig(gs *state.GlobalState) (Config, error) {
	path := gs.Flags.ConfigFilePath
	data, err := fsext.ReadFile(gs.FS, path)
	if errors.Is(err, fs.ErrNotExist) && path == gs.DefaultFlags.ConfigFilePath {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("couldn't load the configuration from %q: %w", path, err)
	}

	var conf Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = unmarshalYAMLConfig(data, &conf)
	default:
		err = json.Unmarshal(data, &conf)
	}
	if err != nil {
		return Config{}, fmt.Errorf("couldn't parse the configuration from %q: %w", path, err)
	}
	return conf, nil
}

// unmarshalYAMLConfig goes through JSON because the null types only know how
// to decode themselves from it.
func unmarshalYAMLConfig(data []byte, conf *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, conf)
}

func readEnvConfig(env map[string]string) (Config, error) {
	var conf Config
	err := envconfig.Process("", &conf, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	return conf, err
}

// getConsolidatedConfig layers defaults, the config file, the environment
// and the CLI flags, in increasing priority.
func getConsolidatedConfig(gs *state.GlobalState, cliConf Config) (Config, error) {
	fileConf, err := readDiskConfig(gs)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	envConf, err := readEnvConfig(gs.Env)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	conf := newConfigDefaults().Apply(fileConf).Apply(envConf).Apply(cliConf)
	return conf, validateConfig(conf)
}

func validateConfig(conf Config) error {
	var errs []error
	if conf.Runs.Int64 < 1 {
		errs = append(errs, fmt.Errorf("runs must be at least 1, got %d", conf.Runs.Int64))
	}
	if strings.TrimSpace(conf.Output.String) == "" {
		errs = append(errs, errors.New("output directory must not be empty"))
	}
	if conf.WindowWidth.Int64 < 1 || conf.WindowHeight.Int64 < 1 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", conf.WindowWidth.Int64, conf.WindowHeight.Int64))
	}
	if _, err := conf.NavTimeout(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}

	err := errors.Join(errs...)
	return errext.WithExitCodeIfNone(
		errext.WithHint(fmt.Errorf("config validation failed: %w", err), "check the flags, FLAKERUN_* variables and config file"),
		exitcodes.InvalidConfig,
	)
}
