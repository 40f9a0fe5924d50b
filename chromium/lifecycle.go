package chromium

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
)

// Lifecycle events waited for after a navigation.
const (
	lifecycleLoad        = "load"
	lifecycleNetworkIdle = "networkIdle"
)

// lifecycleWatcher records the lifecycle events of the page per loader, so
// a navigation can wait for events which might fire before it even learns
// its loader ID.
type lifecycleWatcher struct {
	mu     sync.Mutex
	seen   map[cdp.LoaderID]map[string]bool
	notify chan struct{}
}

func newLifecycleWatcher() *lifecycleWatcher {
	return &lifecycleWatcher{
		seen:   make(map[cdp.LoaderID]map[string]bool),
		notify: make(chan struct{}, 1),
	}
}

// reset forgets every recorded event.
func (w *lifecycleWatcher) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen = make(map[cdp.LoaderID]map[string]bool)
}

func (w *lifecycleWatcher) record(ev *page.EventLifecycleEvent) {
	w.mu.Lock()
	names, ok := w.seen[ev.LoaderID]
	if !ok {
		names = make(map[string]bool)
		w.seen[ev.LoaderID] = names
	}
	names[ev.Name] = true
	w.mu.Unlock()

	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *lifecycleWatcher) has(loaderID cdp.LoaderID, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen[loaderID][name]
}

// wait blocks until every one of names was recorded for loaderID.
func (w *lifecycleWatcher) wait(ctx context.Context, loaderID cdp.LoaderID, names ...string) error {
	for _, name := range names {
		for !w.has(loaderID, name) {
			select {
			case <-w.notify:
			case <-ctx.Done():
				return fmt.Errorf("waiting for %s: %w", name, ctx.Err())
			}
		}
	}
	return nil
}
