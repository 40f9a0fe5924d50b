// Package sessiontest provides an in-memory browser session which records
// every call made against it.
package sessiontest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/liuxd6825/flakerun/common"
)

// Session is a fake common.Session. Configure it before handing it to the
// code under test.
type Session struct {
	FramesErr     error
	ScreenshotErr error
	ContentErr    error
	CloseErr      error

	PNG      []byte
	Document string

	mu     sync.Mutex
	main   *Context
	frames []common.Frame
	calls  []string
	closes int
}

var _ common.Session = &Session{}

// NewSession returns a session with an empty main document.
func NewSession() *Session {
	s := &Session{
		PNG:      []byte("\x89PNG\r\n\x1a\nfake"),
		Document: "<html><head><title></title></head><body></body></html>",
	}
	s.main = newContext(s, "main")
	return s
}

// Main returns the main document.
func (s *Session) Main() *Context {
	return s.main
}

// AddFrame attaches a child frame and returns its context.
func (s *Session) AddFrame(name, id string) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := name
	if label == "" {
		label = id
	}
	if label == "" {
		label = fmt.Sprintf("frame%d", len(s.frames)+1)
	}
	c := newContext(s, label)
	s.frames = append(s.frames, common.Frame{
		Index:   len(s.frames) + 1,
		Name:    name,
		ID:      id,
		URL:     "about:blank",
		Context: c,
	})
	return c
}

// Calls returns every recorded call in order, as `target.Method(args)`.
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Closes returns how many times Close was called.
func (s *Session) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *Session) record(target, method string, args ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("%s.%s(%s)", target, method, strings.Join(args, ", ")))
}

// MainContext implements common.Session.
func (s *Session) MainContext() common.ExecutionContext {
	s.record("session", "MainContext")
	return s.main
}

// Frames implements common.Session.
func (s *Session) Frames(ctx context.Context) ([]common.Frame, error) {
	s.record("session", "Frames")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.FramesErr != nil {
		return nil, s.FramesErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	frames := make([]common.Frame, 0, len(s.frames)+1)
	frames = append(frames, common.Frame{Index: 0, URL: s.main.URL, Context: s.main})
	return append(frames, s.frames...), nil
}

// Screenshot implements common.Session.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	s.record("session", "Screenshot")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.ScreenshotErr != nil {
		return nil, s.ScreenshotErr
	}
	return s.PNG, nil
}

// Content implements common.Session.
func (s *Session) Content(ctx context.Context) (string, error) {
	s.record("session", "Content")
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.ContentErr != nil {
		return "", s.ContentErr
	}
	return s.Document, nil
}

// Close implements common.Session.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	s.record("session", "Close")
	return s.CloseErr
}
