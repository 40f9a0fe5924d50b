package cmd

import (
	"github.com/liuxd6825/flakerun/chromium"
	"github.com/liuxd6825/flakerun/cmd/state"
	"github.com/liuxd6825/flakerun/errext"
	"github.com/liuxd6825/flakerun/errext/exitcodes"
	"github.com/liuxd6825/flakerun/execution"
	"github.com/liuxd6825/flakerun/log"
)

// launcherFactory creates the browser launcher used for every run of a batch.
type launcherFactory func(gs *state.GlobalState, conf Config, logger *log.Logger) (execution.Launcher, error)

// launchOptionsFromConfig maps the browser settings of conf. The launch
// timeout stays at its default, the element and navigation timeouts only
// bound actions.
func launchOptionsFromConfig(conf Config) *chromium.LaunchOptions {
	opts := chromium.NewLaunchOptions()
	opts.Headless = conf.Headless.Bool
	opts.ExecutablePath = conf.ExecutablePath.String
	opts.Args = conf.BrowserArgs
	opts.WindowWidth = conf.WindowWidth.Int64
	opts.WindowHeight = conf.WindowHeight.Int64
	return opts
}

// newChromiumLauncher fails fast when no browser can be found, instead of
// failing every run of the batch.
func newChromiumLauncher(_ *state.GlobalState, conf Config, logger *log.Logger) (execution.Launcher, error) {
	opts := launchOptionsFromConfig(conf)
	bt := chromium.NewBrowserType(opts, logger)
	if opts.ExecutablePath == "" && bt.ExecutablePath() == "" {
		return nil, errext.WithExitCodeIfNone(
			errext.WithHint(chromium.ErrExecutableNotFound, "install Chromium or set --executable-path"),
			exitcodes.BrowserLaunch,
		)
	}
	return bt, nil
}
