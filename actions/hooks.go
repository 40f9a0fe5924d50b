package actions

import (
	"context"
	"fmt"
	"sort"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/scenario"
)

// Hook is a named piece of code a custom action runs.
type Hook func(ctx context.Context, c *Context, a scenario.Action) (Outcome, error)

// RegisterHook makes hook available to custom actions under name.
func (d *Dispatcher) RegisterHook(name string, hook Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks[name] = hook
}

// Hooks returns the names of the registered hooks, sorted.
func (d *Dispatcher) Hooks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.hooks))
	for name := range d.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) hook(name string) (Hook, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.hooks[name]
	return h, ok
}

func (d *Dispatcher) runHook(ctx context.Context, c *Context, a scenario.Action) (out Outcome, err error) {
	name := a.Value
	if name == "" {
		return Outcome{}, &common.InvalidActionError{Tag: a.Type, Reason: "missing hook name"}
	}
	hook, ok := d.hook(name)
	if !ok {
		return Outcome{}, &common.InvalidActionError{Tag: a.Type, Reason: fmt.Sprintf("unknown hook %q", name)}
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = Outcome{}, &common.HookPanicError{Hook: name, Value: r}
		}
	}()
	return hook(ctx, c, a)
}
