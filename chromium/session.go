package chromium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/log"
)

// maxFrameDepth limits how deep nested iframes are looked up.
const maxFrameDepth = 8

var errSessionClosed = errors.New("browser session is closed")

// Session is a browser with a single tab.
type Session struct {
	tabCtx  context.Context
	release func()
	logger  *log.Logger

	lifecycle *lifecycleWatcher
	main      *frameContext

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

var _ common.Session = &Session{}

func newSession(tabCtx context.Context, release func(), logger *log.Logger) *Session {
	s := &Session{
		tabCtx:    tabCtx,
		release:   release,
		logger:    logger,
		lifecycle: newLifecycleWatcher(),
		closed:    make(chan struct{}),
	}
	s.main = &frameContext{s: s, label: "main"}
	return s
}

// run runs actions on the tab with the deadline and cancellation of ctx.
// When ctx is done the error of ctx is returned, not the one chromedp saw.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	select {
	case <-s.closed:
		return errSessionClosed
	default:
	}

	rctx, cancel := mergeContext(ctx, s.tabCtx)
	defer cancel()

	err := chromedp.Run(rctx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *Session) onEvent(ev any) {
	switch ev := ev.(type) {
	case *page.EventLifecycleEvent:
		s.lifecycle.record(ev)
	case *runtime.EventConsoleAPICalled:
		s.logger.Debugf("console", "%s: %s", ev.Type, consoleLine(ev.Args))
	case *runtime.EventExceptionThrown:
		if ev.ExceptionDetails != nil {
			s.logger.Debugf("console", "exception: %s", ev.ExceptionDetails.Text)
		}
	}
}

func consoleLine(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		if len(arg.Value) == 0 {
			parts = append(parts, arg.Description)
			continue
		}
		var s string
		if err := json.Unmarshal([]byte(arg.Value), &s); err == nil {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, string(arg.Value))
	}
	return strings.Join(parts, " ")
}

// MainContext returns the top level document.
func (s *Session) MainContext() common.ExecutionContext {
	return s.main
}

// Frames returns the main document followed by every iframe, depth first.
func (s *Session) Frames(ctx context.Context) ([]common.Frame, error) {
	frames := []common.Frame{{Index: 0, Context: s.main}}
	if err := s.collectFrames(ctx, nil, &frames, 1); err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *Session) collectFrames(ctx context.Context, parent *cdp.Node, frames *[]common.Frame, depth int) error {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if parent != nil {
		opts = append(opts, chromedp.FromNode(parent))
	}
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes("iframe", &nodes, opts...)); err != nil {
		return err
	}

	for _, n := range nodes {
		f := common.Frame{
			Index: len(*frames),
			Name:  n.AttributeValue("name"),
			ID:    n.AttributeValue("id"),
			URL:   n.AttributeValue("src"),
		}
		f.Context = &frameContext{s: s, node: n, label: frameLabel(f)}
		*frames = append(*frames, f)

		if depth < maxFrameDepth {
			if err := s.collectFrames(ctx, n, frames, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func frameLabel(f common.Frame) string {
	switch {
	case f.Name != "":
		return f.Name
	case f.ID != "":
		return "#" + f.ID
	default:
		return fmt.Sprintf("frame %d", f.Index)
	}
}

// Screenshot captures the viewport as a PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Content returns the serialized top level document.
func (s *Session) Content(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Close closes the browser. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		if err := chromedp.Cancel(s.tabCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = err
		}
		s.release()
	})
	return s.closeErr
}
