package chromium

import "context"

// mergeContext returns a context carrying the values of tab which is also
// cancelled once ctx is done. Actions run on the tab get the deadline and
// cancellation of the caller this way.
func mergeContext(ctx, tab context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(tab)
	stop := context.AfterFunc(ctx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
