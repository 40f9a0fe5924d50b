package chromium

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/liuxd6825/flakerun/common"
)

// frameContext runs commands in a document of the tab. The node is nil for
// the main document and the iframe element otherwise.
type frameContext struct {
	s     *Session
	node  *cdp.Node
	label string
}

var _ common.ExecutionContext = &frameContext{}

func (f *frameContext) query(opts ...chromedp.QueryOption) []chromedp.QueryOption {
	opts = append(opts, chromedp.ByQuery)
	if f.node != nil {
		opts = append(opts, chromedp.FromNode(f.node))
	}
	return opts
}

// Navigate loads url in the frame and waits for the load and network idle
// lifecycle events of the new document.
func (f *frameContext) Navigate(ctx context.Context, url string) error {
	f.s.lifecycle.reset()

	params := page.Navigate(url)
	if f.node != nil {
		params = params.WithFrameID(f.node.FrameID)
	}
	var res page.NavigateReturns
	err := f.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return cdp.Execute(ctx, page.CommandNavigate, params, &res)
	}))
	if err != nil {
		return err
	}
	if res.ErrorText != "" {
		return &common.NavigationError{URL: url, Reason: res.ErrorText}
	}
	if res.LoaderID == "" {
		// same document navigation
		return nil
	}

	f.s.logger.Debugf("chromium", "%s: navigating to %s, loader %s", f.label, url, res.LoaderID)
	return f.s.lifecycle.wait(ctx, res.LoaderID, lifecycleLoad, lifecycleNetworkIdle)
}

func (f *frameContext) WaitForSelector(ctx context.Context, selector string) error {
	return f.s.run(ctx, chromedp.WaitReady(selector, f.query()...))
}

func (f *frameContext) Type(ctx context.Context, selector, text string) error {
	return f.s.run(ctx, chromedp.SendKeys(selector, text, f.query()...))
}

// Press sends a named key, like Enter, to the element.
func (f *frameContext) Press(ctx context.Context, selector, key string) error {
	return f.s.run(ctx, chromedp.SendKeys(selector, keyFor(key), f.query()...))
}

func keyFor(name string) string {
	switch name {
	case common.KeyEnter:
		return kb.Enter
	case "Tab":
		return kb.Tab
	case "Escape":
		return kb.Escape
	case "Backspace":
		return kb.Backspace
	default:
		return name
	}
}

func (f *frameContext) Click(ctx context.Context, selector string) error {
	return f.s.run(ctx, chromedp.Click(selector, f.query()...))
}

func (f *frameContext) Title(ctx context.Context) (string, error) {
	var title string
	if f.node == nil {
		err := f.s.run(ctx, chromedp.Title(&title))
		return title, err
	}

	var nodes []*cdp.Node
	if err := f.s.run(ctx, chromedp.Nodes("title", &nodes, f.query(chromedp.AtLeast(0))...)); err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", nil
	}
	err := f.s.run(ctx, chromedp.TextContent("title", &title, f.query()...))
	return title, err
}

func (f *frameContext) InnerText(ctx context.Context, selector string) (string, error) {
	var text string
	err := f.s.run(ctx, chromedp.Text(selector, &text, f.query()...))
	return text, err
}

func (f *frameContext) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	err := f.s.run(ctx, chromedp.OuterHTML(selector, &html, f.query()...))
	return html, err
}
