// Package report renders the result of a batch.
package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/execution"
	"github.com/liuxd6825/flakerun/lib/fsext"
)

// FileName is the name of the report written at the output root.
const FileName = "report.txt"

// Reporter renders a batch: Begin once, Report for every run in order, End
// once.
type Reporter interface {
	Begin(w io.Writer, b *execution.BatchResult) error
	Report(w io.Writer, res *execution.RunResult) error
	End(w io.Writer, b *execution.BatchResult) error
}

// Report renders b with r.
func Report(r Reporter, w io.Writer, b *execution.BatchResult) error {
	if err := r.Begin(w, b); err != nil {
		return err
	}
	for i := range b.Runs {
		if err := r.Report(w, &b.Runs[i]); err != nil {
			return err
		}
	}
	return r.End(w, b)
}

// Write renders b with a TextReporter into root/report.txt and returns the
// path of the report.
func Write(fs afero.Fs, root string, b *execution.BatchResult) (string, error) {
	var buf bytes.Buffer
	if err := Report(TextReporter{}, &buf, b); err != nil {
		return "", err
	}

	path := filepath.Join(root, FileName)
	if err := fsext.WriteFileAll(fs, path, buf.Bytes()); err != nil {
		return "", &common.IOError{Op: "write report", Path: path, Err: err}
	}
	return path, nil
}

// TextReporter renders the plain report: the summary line, then one line per
// run.
type TextReporter struct{}

var _ Reporter = TextReporter{}

func (TextReporter) Begin(w io.Writer, b *execution.BatchResult) error {
	_, err := fmt.Fprintln(w, b.Summary())
	return err
}

func (TextReporter) Report(w io.Writer, res *execution.RunResult) error {
	var err error
	if res.Outcome == execution.Success {
		_, err = fmt.Fprintf(w, "%d. Success\n", res.RunIndex)
	} else {
		_, err = fmt.Fprintf(w, "%d. Error: %s\n", res.RunIndex, res.Reason())
	}
	return err
}

func (TextReporter) End(io.Writer, *execution.BatchResult) error {
	return nil
}
