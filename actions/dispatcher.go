package actions

import (
	"context"
	"sync"

	"github.com/liuxd6825/flakerun/common"
	"github.com/liuxd6825/flakerun/scenario"
)

// Handler executes one kind of action.
type Handler interface {
	Execute(ctx context.Context, c *Context, a scenario.Action) (Outcome, error)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(ctx context.Context, c *Context, a scenario.Action) (Outcome, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, c *Context, a scenario.Action) (Outcome, error) {
	return f(ctx, c, a)
}

// Dispatcher routes actions to the handler registered for their tag.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[scenario.ActionTag]Handler
	hooks    map[string]Hook
}

// NewDispatcher returns a dispatcher with every built-in handler
// registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[scenario.ActionTag]Handler),
		hooks:    make(map[string]Hook),
	}

	d.Register(scenario.ActionNavigate, HandlerFunc(navigate))
	d.Register(scenario.ActionTypeAndSubmit, HandlerFunc(typeAndSubmit))
	d.Register(scenario.ActionClick, HandlerFunc(click))
	d.Register(scenario.ActionWaitForSelector, HandlerFunc(waitForSelector))
	d.Register(scenario.ActionWaitForDuration, HandlerFunc(waitForDuration))
	d.Register(scenario.ActionAssertTitle, HandlerFunc(assertTitle))
	d.Register(scenario.ActionAssertText, HandlerFunc(assertText))
	d.Register(scenario.ActionSwitchFrame, HandlerFunc(switchFrame))
	d.Register(scenario.ActionCaptureScreenshot, HandlerFunc(captureScreenshot))
	d.Register(scenario.ActionDumpContent, HandlerFunc(dumpContent))
	d.Register(scenario.ActionCustom, HandlerFunc(d.runHook))

	return d
}

// Register sets the handler of tag, replacing any previous one.
func (d *Dispatcher) Register(tag scenario.ActionTag, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[tag] = h
}

func (d *Dispatcher) handler(tag scenario.ActionTag) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[tag]
	return h, ok
}

// Execute runs a in the frame it names, or in the current frame of env when
// it names none. An action with an unknown tag fails before the session is
// touched. A panicking handler fails the action with an ActionPanicError.
func (d *Dispatcher) Execute(ctx context.Context, env *Env, a scenario.Action) (out Outcome, err error) {
	h, ok := d.handler(a.Type)
	if !ok {
		return Outcome{}, &common.UnsupportedActionError{Tag: a.Type}
	}

	ref := a.Frame
	if ref == nil {
		ref = env.Frame
	}
	ec, err := common.ResolveFrame(ctx, env.Session, ref)
	if err != nil {
		return Outcome{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = Outcome{}, &common.ActionPanicError{Tag: a.Type, Value: r}
		}
	}()
	return h.Execute(ctx, &Context{Env: env, Exec: ec}, a)
}
