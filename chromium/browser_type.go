// Package chromium drives a local Chromium through the DevTools protocol.
package chromium

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/log"
)

// ErrExecutableNotFound is returned when no Chromium executable could be
// found and none was configured.
var ErrExecutableNotFound = errors.New("couldn't find a chromium executable")

// BrowserType launches a fresh browser for every session.
type BrowserType struct {
	opts     *LaunchOptions
	logger   *log.Logger
	execPath string
}

// NewBrowserType returns a BrowserType launching with opts.
func NewBrowserType(opts *LaunchOptions, logger *log.Logger) *BrowserType {
	if opts == nil {
		opts = NewLaunchOptions()
	}
	return &BrowserType{opts: opts, logger: logger}
}

// Name returns the name of this browser type.
func (b *BrowserType) Name() string {
	return "chromium"
}

// Launch starts a new browser process and opens a tab in it. The start is
// bounded by the launch timeout and ctx, the browser itself lives until the
// session is closed.
func (b *BrowserType) Launch(ctx context.Context) (common.Session, error) {
	path := b.opts.ExecutablePath
	if path == "" {
		path = b.ExecutablePath()
	}
	if path == "" {
		return nil, ErrExecutableNotFound
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), b.allocatorOptions(path)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(b.chromedpLogf),
		chromedp.WithErrorf(b.chromedpLogf),
	)
	s := newSession(tabCtx, func() {
		tabCancel()
		allocCancel()
	}, b.logger)
	chromedp.ListenTarget(tabCtx, s.onEvent)

	lctx, cancel := context.WithTimeout(ctx, b.opts.timeout())
	defer cancel()

	// The first run allocates the browser and ties it to the context it
	// gets, so it must get the tab context itself.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()
	select {
	case err := <-started:
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("starting %s: %w", path, err)
		}
	case <-lctx.Done():
		_ = s.Close()
		<-started
		return nil, fmt.Errorf("starting %s: %w", path, lctx.Err())
	}

	err := s.run(lctx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.EmulateViewport(b.opts.windowWidth(), b.opts.windowHeight()),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("preparing the page: %w", err)
	}

	b.logger.Debugf("chromium", "launched %s", path)
	return s, nil
}

func (b *BrowserType) allocatorOptions(path string) []chromedp.ExecAllocatorOption {
	flags := prepareFlags(b.opts)
	if _, ok := flags["no-sandbox"]; !ok && os.Getuid() == 0 {
		// Chromium needs --no-sandbox when running as root, for example in
		// a Linux container.
		flags["no-sandbox"] = true
	}

	opts := make([]chromedp.ExecAllocatorOption, 0, len(flags)+1)
	opts = append(opts, chromedp.ExecPath(path))
	for name, value := range flags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

func (b *BrowserType) chromedpLogf(format string, args ...any) {
	b.logger.Tracef("chromedp", format, args...)
}

// ExecutablePath returns the first Chromium executable found on this
// system, or an empty string.
func (b *BrowserType) ExecutablePath() (execPath string) {
	if b.execPath != "" {
		return b.execPath
	}
	defer func() {
		b.execPath = execPath
	}()

	for _, path := range [...]string{
		// Unix-like
		"headless_shell",
		"headless-shell",
		"chromium",
		"chromium-browser",
		"google-chrome",
		"google-chrome-stable",
		"google-chrome-beta",
		"google-chrome-unstable",
		"/usr/bin/google-chrome",

		// Windows
		"chrome",
		"chrome.exe", // in case PATHEXT is misconfigured
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		filepath.Join(os.Getenv("USERPROFILE"), `AppData\Local\Google\Chrome\Application\chrome.exe`),

		// Mac
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	} {
		if _, err := exec.LookPath(path); err == nil {
			return path
		}
	}

	return ""
}
