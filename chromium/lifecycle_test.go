package chromium

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lifecycleEvent(loader, name string) *page.EventLifecycleEvent {
	return &page.EventLifecycleEvent{LoaderID: cdp.LoaderID(loader), Name: name}
}

func TestLifecycleWatcher(t *testing.T) {
	t.Parallel()

	t.Run("recorded_before_wait", func(t *testing.T) {
		t.Parallel()

		w := newLifecycleWatcher()
		w.record(lifecycleEvent("L1", lifecycleLoad))
		w.record(lifecycleEvent("L1", lifecycleNetworkIdle))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, w.wait(ctx, "L1", lifecycleLoad, lifecycleNetworkIdle))
	})

	t.Run("recorded_while_waiting", func(t *testing.T) {
		t.Parallel()

		w := newLifecycleWatcher()
		done := make(chan error, 1)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			done <- w.wait(ctx, "L2", lifecycleLoad, lifecycleNetworkIdle)
		}()

		w.record(lifecycleEvent("L1", lifecycleLoad))
		w.record(lifecycleEvent("L2", lifecycleNetworkIdle))
		w.record(lifecycleEvent("L2", lifecycleLoad))
		require.NoError(t, <-done)
	})

	t.Run("other_loader", func(t *testing.T) {
		t.Parallel()

		w := newLifecycleWatcher()
		w.record(lifecycleEvent("L1", lifecycleLoad))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := w.wait(ctx, "L2", lifecycleLoad)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Contains(t, err.Error(), "waiting for load")
	})

	t.Run("reset", func(t *testing.T) {
		t.Parallel()

		w := newLifecycleWatcher()
		w.record(lifecycleEvent("L1", lifecycleLoad))
		w.reset()
		assert.False(t, w.has("L1", lifecycleLoad))
	})
}

func TestConsoleLine(t *testing.T) {
	t.Parallel()

	line := consoleLine([]*runtime.RemoteObject{
		{Type: runtime.TypeString, Value: []byte(`"loaded"`)},
		{Type: runtime.TypeNumber, Value: []byte(`42`)},
		nil,
		{Type: runtime.TypeObject, Description: "HTMLDivElement"},
	})
	assert.Equal(t, "loaded 42 HTMLDivElement", line)
}

func TestKeyFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\r", keyFor("Enter"))
	assert.Equal(t, "a", keyFor("a"))
}
