package sessiontest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/liuxd6825/flakerun/common"
)

// Context is a fake common.ExecutionContext. A selector is present once it
// was added with AddElement. Waiting on a missing selector blocks until the
// deadline of the passed context.
type Context struct {
	// TitleText is what Title returns.
	TitleText string
	// URL is the last navigated URL.
	URL string
	// OnNavigate is called by Navigate. Its error is returned.
	OnNavigate func(c *Context, url string) error
	// Errs forces a method, by name, to fail.
	Errs map[string]error

	s     *Session
	name  string
	mu    sync.Mutex
	texts map[string]string
	html  map[string]string
	typed map[string]string
}

var _ common.ExecutionContext = &Context{}

func newContext(s *Session, name string) *Context {
	return &Context{
		s:     s,
		name:  name,
		Errs:  map[string]error{},
		texts: map[string]string{},
		html:  map[string]string{},
		typed: map[string]string{},
	}
}

// AddElement makes selector present with the given inner text and outer
// HTML.
func (c *Context) AddElement(selector, text, outerHTML string) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts[selector] = text
	c.html[selector] = outerHTML
	return c
}

// LoadHTML parses src and adds the first match of each selector as an
// element, using the matched node's text and outer HTML. TitleText is set
// from the document's title element.
func (c *Context) LoadHTML(src string, selectors ...string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return err
	}
	c.TitleText = strings.TrimSpace(doc.Find("title").First().Text())
	for _, sel := range selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			return fmt.Errorf("selector %q matches nothing", sel)
		}
		outer, err := goquery.OuterHtml(node)
		if err != nil {
			return err
		}
		c.AddElement(sel, strings.TrimSpace(node.Text()), outer)
	}
	return nil
}

// Typed returns the text typed into selector.
func (c *Context) Typed(selector string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typed[selector]
}

func (c *Context) fail(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Errs[method]
}

func (c *Context) wait(ctx context.Context, selector string) error {
	c.mu.Lock()
	_, ok := c.texts[selector]
	c.mu.Unlock()
	if ok {
		return ctx.Err()
	}
	<-ctx.Done()
	return ctx.Err()
}

// Navigate implements common.ExecutionContext.
func (c *Context) Navigate(ctx context.Context, url string) error {
	c.s.record(c.name, "Navigate", url)
	if err := c.fail("Navigate"); err != nil {
		return err
	}
	c.URL = url
	if c.OnNavigate != nil {
		return c.OnNavigate(c, url)
	}
	return ctx.Err()
}

// WaitForSelector implements common.ExecutionContext.
func (c *Context) WaitForSelector(ctx context.Context, selector string) error {
	c.s.record(c.name, "WaitForSelector", selector)
	if err := c.fail("WaitForSelector"); err != nil {
		return err
	}
	return c.wait(ctx, selector)
}

// Type implements common.ExecutionContext.
func (c *Context) Type(ctx context.Context, selector, text string) error {
	c.s.record(c.name, "Type", selector, text)
	if err := c.fail("Type"); err != nil {
		return err
	}
	if err := c.wait(ctx, selector); err != nil {
		return err
	}
	c.mu.Lock()
	c.typed[selector] += text
	c.mu.Unlock()
	return nil
}

// Press implements common.ExecutionContext.
func (c *Context) Press(ctx context.Context, selector, key string) error {
	c.s.record(c.name, "Press", selector, key)
	if err := c.fail("Press"); err != nil {
		return err
	}
	return c.wait(ctx, selector)
}

// Click implements common.ExecutionContext.
func (c *Context) Click(ctx context.Context, selector string) error {
	c.s.record(c.name, "Click", selector)
	if err := c.fail("Click"); err != nil {
		return err
	}
	return c.wait(ctx, selector)
}

// Title implements common.ExecutionContext.
func (c *Context) Title(ctx context.Context) (string, error) {
	c.s.record(c.name, "Title")
	if err := c.fail("Title"); err != nil {
		return "", err
	}
	return c.TitleText, ctx.Err()
}

// InnerText implements common.ExecutionContext.
func (c *Context) InnerText(ctx context.Context, selector string) (string, error) {
	c.s.record(c.name, "InnerText", selector)
	if err := c.fail("InnerText"); err != nil {
		return "", err
	}
	if err := c.wait(ctx, selector); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.texts[selector], nil
}

// OuterHTML implements common.ExecutionContext.
func (c *Context) OuterHTML(ctx context.Context, selector string) (string, error) {
	c.s.record(c.name, "OuterHTML", selector)
	if err := c.fail("OuterHTML"); err != nil {
		return "", err
	}
	if err := c.wait(ctx, selector); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.html[selector], nil
}
