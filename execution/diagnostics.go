package execution

import (
	"context"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/lib/fsext"
	"github.com/liuxd6825/flakerun/log"
)

// Diagnostics captures the state of the page into a run directory.
type Diagnostics struct {
	FS      afero.Fs
	Logger  *log.Logger
	Timeout time.Duration
}

// ScreenshotName returns the file name of the screenshot tagged tag.
func ScreenshotName(tag string) string {
	return "step-" + tag + ".png"
}

// DOMName returns the file name of the DOM dump tagged tag.
func DOMName(tag string) string {
	return "html-step-" + tag + ".html"
}

// Capture saves a screenshot and a DOM dump, each on its own. It runs on a
// context detached from ctx, so it still works after the run was
// cancelled. Failures are logged and never returned. It returns the paths
// actually written.
func (d *Diagnostics) Capture(ctx context.Context, s common.Session, outputDir, tag string) []string {
	var written []string
	if path, err := d.Screenshot(ctx, s, outputDir, tag); err != nil {
		d.Logger.Warnf("diagnostics", "couldn't capture screenshot: %s", err)
	} else {
		written = append(written, path)
	}
	if path, err := d.DOM(ctx, s, outputDir, tag); err != nil {
		d.Logger.Warnf("diagnostics", "couldn't capture page content: %s", err)
	} else {
		written = append(written, path)
	}
	return written
}

func (d *Diagnostics) detached(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = common.DiagnosticsTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

// Screenshot saves the viewport as step-{tag}.png.
func (d *Diagnostics) Screenshot(ctx context.Context, s common.Session, outputDir, tag string) (string, error) {
	ctx, cancel := d.detached(ctx)
	defer cancel()

	path := filepath.Join(outputDir, ScreenshotName(tag))
	png, err := s.Screenshot(ctx)
	if err != nil {
		return "", &common.IOError{Op: "capture screenshot", Path: path, Err: err}
	}
	if err := fsext.WriteFileAll(d.FS, path, png); err != nil {
		return "", &common.IOError{Op: "write screenshot", Path: path, Err: err}
	}
	return path, nil
}

// DOM saves the pretty printed document as html-step-{tag}.html.
func (d *Diagnostics) DOM(ctx context.Context, s common.Session, outputDir, tag string) (string, error) {
	ctx, cancel := d.detached(ctx)
	defer cancel()

	path := filepath.Join(outputDir, DOMName(tag))
	content, err := s.Content(ctx)
	if err != nil {
		return "", &common.IOError{Op: "read content", Path: path, Err: err}
	}
	if pretty, perr := common.PrettyHTML(content); perr == nil {
		content = pretty
	}
	if err := fsext.WriteFileAll(d.FS, path, []byte(content)); err != nil {
		return "", &common.IOError{Op: "write content", Path: path, Err: err}
	}
	return path, nil
}
