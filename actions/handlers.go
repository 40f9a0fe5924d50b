package actions

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/lib/fsext"
	"github.com/liuxd6825/flakerun/scenario"
)

func invalid(a scenario.Action, format string, args ...any) error {
	return &common.InvalidActionError{Tag: a.Type, Reason: fmt.Sprintf(format, args...)}
}

func requireTarget(a scenario.Action) error {
	if a.Target == "" {
		return invalid(a, "missing target selector")
	}
	return nil
}

func requireExpected(a scenario.Action) error {
	if a.Expected == nil {
		return invalid(a, "missing expected value")
	}
	return nil
}

// elementTimeout returns a context bounded by the element timeout.
func (c *Context) elementTimeout(ctx context.Context) (context.Context, context.CancelFunc, time.Duration) {
	timeout := c.Timeouts.Timeout()
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, cancel, timeout
}

func navigate(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	u, err := url.Parse(a.Value)
	if err != nil {
		return Outcome{}, invalid(a, "malformed URL %q: %s", a.Value, err)
	}
	if !u.IsAbs() {
		return Outcome{}, invalid(a, "URL %q is not absolute", a.Value)
	}

	timeout := c.Timeouts.NavigationTimeout()
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.Exec.Navigate(tctx, a.Value); err != nil {
		return Outcome{}, common.OperationError(fmt.Sprintf("navigation to %q", a.Value), timeout, err)
	}
	return Outcome{Message: "navigated to " + a.Value}, nil
}

func typeAndSubmit(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	if err := requireTarget(a); err != nil {
		return Outcome{}, err
	}

	tctx, cancel, timeout := c.elementTimeout(ctx)
	defer cancel()

	if err := c.Exec.WaitForSelector(tctx, a.Target); err != nil {
		return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
	}
	if err := c.Exec.Type(tctx, a.Target, a.Value); err != nil {
		return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
	}
	if err := c.Exec.Press(tctx, a.Target, common.KeyEnter); err != nil {
		return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
	}
	return Outcome{Message: fmt.Sprintf("typed %q into %s and submitted", a.Value, a.Target)}, nil
}

func click(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	if err := requireTarget(a); err != nil {
		return Outcome{}, err
	}

	tctx, cancel, timeout := c.elementTimeout(ctx)
	defer cancel()

	if err := c.Exec.WaitForSelector(tctx, a.Target); err != nil {
		return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
	}
	if err := c.Exec.Click(tctx, a.Target); err != nil {
		return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
	}
	return Outcome{Message: "clicked " + a.Target}, nil
}

func waitForSelector(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	if err := requireTarget(a); err != nil {
		return Outcome{}, err
	}

	tctx, cancel, timeout := c.elementTimeout(ctx)
	defer cancel()

	if err := c.Exec.WaitForSelector(tctx, a.Target); err != nil {
		return Outcome{}, common.OperationError(fmt.Sprintf("selector %q", a.Target), timeout, err)
	}
	return Outcome{Message: a.Target + " is present"}, nil
}

func waitForDuration(ctx context.Context, _ *Context, a scenario.Action) (Outcome, error) {
	ms, err := strconv.ParseInt(a.Value, 10, 64)
	if err != nil || ms < 0 {
		return Outcome{}, invalid(a, "duration %q is not a non-negative number of milliseconds", a.Value)
	}

	d := time.Duration(ms) * time.Millisecond
	if err := common.Sleep(ctx, d); err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: "waited " + d.String()}, nil
}

func assertTitle(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	if err := requireExpected(a); err != nil {
		return Outcome{}, err
	}

	tctx, cancel, timeout := c.elementTimeout(ctx)
	defer cancel()

	title, err := c.Exec.Title(tctx)
	if err != nil {
		return Outcome{}, common.OperationError("page title", timeout, err)
	}
	if !a.Expected.Match(title) {
		return Outcome{}, &common.AssertionMismatchError{Subject: "title", Expected: *a.Expected, Actual: title}
	}
	return Outcome{Message: fmt.Sprintf("title %q %s", title, a.Expected)}, nil
}

func assertText(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	if err := requireTarget(a); err != nil {
		return Outcome{}, err
	}
	if err := requireExpected(a); err != nil {
		return Outcome{}, err
	}

	tctx, cancel, timeout := c.elementTimeout(ctx)
	defer cancel()

	if err := c.Exec.WaitForSelector(tctx, a.Target); err != nil {
		return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
	}
	text, err := c.Exec.InnerText(tctx, a.Target)
	if err != nil {
		return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
	}
	if !a.Expected.Match(text) {
		return Outcome{}, &common.AssertionMismatchError{
			Subject:  fmt.Sprintf("text of %s", a.Target),
			Expected: *a.Expected,
			Actual:   text,
		}
	}
	return Outcome{Message: fmt.Sprintf("text of %s %s", a.Target, a.Expected)}, nil
}

// switchFrame only validates the frame, which the dispatcher already
// resolved, and hands it back to the step.
func switchFrame(_ context.Context, _ *Context, a scenario.Action) (Outcome, error) {
	if a.Frame == nil {
		return Outcome{}, invalid(a, "missing frame")
	}
	return Outcome{Message: "switched to frame " + a.Frame.String(), SwitchTo: a.Frame}, nil
}

func captureScreenshot(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	path, err := fsext.JoinInside(c.OutputDir, a.Value)
	if err != nil {
		return Outcome{}, invalid(a, "%s", err)
	}

	tctx, cancel, _ := c.elementTimeout(ctx)
	defer cancel()

	png, err := c.Session.Screenshot(tctx)
	if err != nil {
		return Outcome{}, &common.IOError{Op: "capture screenshot", Path: path, Err: err}
	}
	if err := fsext.WriteFileAll(c.FS, path, png); err != nil {
		return Outcome{}, &common.IOError{Op: "write screenshot", Path: path, Err: err}
	}
	return Outcome{Message: "screenshot saved to " + path, Artifacts: []string{path}}, nil
}

// dumpContent writes the outer HTML of Target, or of the whole document
// when there is no target.
func dumpContent(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	path, err := fsext.JoinInside(c.OutputDir, a.Value)
	if err != nil {
		return Outcome{}, invalid(a, "%s", err)
	}

	tctx, cancel, timeout := c.elementTimeout(ctx)
	defer cancel()

	var content string
	if a.Target == "" {
		if content, err = c.Session.Content(tctx); err != nil {
			return Outcome{}, &common.IOError{Op: "read content", Path: path, Err: err}
		}
	} else {
		if err := c.Exec.WaitForSelector(tctx, a.Target); err != nil {
			return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
		}
		if content, err = c.Exec.OuterHTML(tctx, a.Target); err != nil {
			return Outcome{}, common.ElementWaitError(a.Target, timeout, err)
		}
	}

	if pretty, perr := common.PrettyHTML(content); perr == nil {
		content = pretty
	} else {
		c.Logger.Warnf("actions", "keeping raw HTML of %s: %s", a.Target, perr)
	}
	if err := fsext.WriteFileAll(c.FS, path, []byte(content)); err != nil {
		return Outcome{}, &common.IOError{Op: "write content", Path: path, Err: err}
	}
	return Outcome{Message: "content saved to " + path, Artifacts: []string{path}}, nil
}
