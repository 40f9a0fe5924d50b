package chromium

import (
	"fmt"
	"strings"
	"time"

	"github.com/liuxd6825/flakerun/common"
)

// LaunchOptions configures the browser started for every run.
type LaunchOptions struct {
	Headless          bool
	Devtools          bool
	ExecutablePath    string
	Args              []string
	IgnoreDefaultArgs []string
	WindowWidth       int64
	WindowHeight      int64
	// Timeout bounds the start of the browser.
	Timeout time.Duration
}

// NewLaunchOptions returns the default launch options.
func NewLaunchOptions() *LaunchOptions {
	return &LaunchOptions{
		Headless:     true,
		WindowWidth:  common.DefaultScreenWidth,
		WindowHeight: common.DefaultScreenHeight,
		Timeout:      common.DefaultTimeout,
	}
}

func prepareFlags(lopts *LaunchOptions) map[string]any {
	// After Puppeteer's and Playwright's default behavior.
	f := map[string]any{
		"disable-background-networking":                      true,
		"enable-features":                                    "NetworkService,NetworkServiceInProcess",
		"disable-background-timer-throttling":                true,
		"disable-backgrounding-occluded-windows":             true,
		"disable-breakpad":                                   true,
		"disable-component-extensions-with-background-pages": true,
		"disable-default-apps":                               true,
		"disable-dev-shm-usage":                              true,
		"disable-extensions":                                 true,
		//nolint:lll
		"disable-features":                "ImprovedCookieControls,LazyFrameLoading,GlobalMediaControls,DestroyProfileOnBrowserClose,MediaRouter,AcceptCHFrame",
		"disable-hang-monitor":            true,
		"disable-ipc-flooding-protection": true,
		"disable-popup-blocking":          true,
		"disable-prompt-on-repost":        true,
		"disable-renderer-backgrounding":  true,
		"force-color-profile":             "srgb",
		"metrics-recording-only":          true,
		"no-first-run":                    true,
		"enable-automation":               true,
		"password-store":                  "basic",
		"use-mock-keychain":               true,
		"no-service-autorun":              true,

		"no-default-browser-check":    true,
		"headless":                    lopts.Headless,
		"auto-open-devtools-for-tabs": lopts.Devtools,
		"window-size":                 fmt.Sprintf("%d,%d", lopts.windowWidth(), lopts.windowHeight()),
	}
	if lopts.Headless {
		f["hide-scrollbars"] = true
		f["mute-audio"] = true
		f["blink-settings"] = "primaryHoverType=2,availableHoverTypes=2,primaryPointerType=4,availablePointerTypes=4"
	}
	ignoreDefaultArgsFlags(f, lopts.IgnoreDefaultArgs)
	setFlagsFromArgs(f, lopts.Args)

	return f
}

func (o *LaunchOptions) windowWidth() int64 {
	if o.WindowWidth <= 0 {
		return common.DefaultScreenWidth
	}
	return o.WindowWidth
}

func (o *LaunchOptions) windowHeight() int64 {
	if o.WindowHeight <= 0 {
		return common.DefaultScreenHeight
	}
	return o.WindowHeight
}

func (o *LaunchOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return common.DefaultTimeout
	}
	return o.Timeout
}

// ignoreDefaultArgsFlags ignores any flags in the provided slice.
func ignoreDefaultArgsFlags(flags map[string]any, toIgnore []string) {
	for _, name := range toIgnore {
		delete(flags, strings.TrimPrefix(name, "--"))
	}
}

// setFlagsFromArgs fills flags from "name=value" or "name" arguments.
func setFlagsFromArgs(flags map[string]any, args []string) {
	for _, arg := range args {
		pair := strings.SplitN(arg, "=", 2)
		name, val := strings.TrimPrefix(strings.TrimSpace(pair[0]), "--"), ""
		if len(pair) > 1 {
			val = trimQuotes(strings.TrimSpace(pair[1]))
		}
		flags[name] = val
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
