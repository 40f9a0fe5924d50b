// Package console holds the writers used for the terminal output.
package console

import (
	"bytes"
	"io"
	"sync"
)

// Writer syncs writes with a mutex and, if the output is a TTY, clears
// before newlines.
type Writer struct {
	Mutex  *sync.Mutex
	Writer io.Writer
	IsTTY  bool
}

func (w *Writer) Write(p []byte) (n int, err error) {
	origLen := len(p)
	if w.IsTTY {
		// Add a TTY code to erase till the end of line with each new line
		p = bytes.ReplaceAll(p, []byte{'\n'}, []byte{'\x1b', '[', '0', 'K', '\n'})
	}

	w.Mutex.Lock()
	n, err = w.Writer.Write(p)
	w.Mutex.Unlock()

	if err != nil && n < origLen {
		return n, err
	}
	return origLen, err
}
