// Package common holds the browser facing abstractions the engine works
// against, together with the errors the engine reports.
package common

import "context"

// ExecutionContext is a document the actions run against: the page itself
// or one of its frames. Blocking methods honor the deadline of ctx.
type ExecutionContext interface {
	Navigate(ctx context.Context, url string) error
	WaitForSelector(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	Press(ctx context.Context, selector, key string) error
	Click(ctx context.Context, selector string) error
	Title(ctx context.Context) (string, error)
	InnerText(ctx context.Context, selector string) (string, error)
	OuterHTML(ctx context.Context, selector string) (string, error)
}

// Frame is a document of the page as listed by Session.Frames.
type Frame struct {
	Index   int
	Name    string
	ID      string
	URL     string
	Context ExecutionContext
}

// Session is a single browser instance with one page. It's owned by one run
// and closed exactly once.
type Session interface {
	// MainContext returns the top level document.
	MainContext() ExecutionContext
	// Frames lists the main document followed by every nested frame in
	// depth-first document order.
	Frames(ctx context.Context) ([]Frame, error)
	// Screenshot captures the visible viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// Content returns the serialized DOM of the main document.
	Content(ctx context.Context) (string, error)
	Close() error
}

// Key names accepted by ExecutionContext.Press.
const (
	KeyEnter = "Enter"
)
