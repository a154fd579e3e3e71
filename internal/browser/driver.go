// Package browser defines the browsing capability surface used by the session,
// crawler and publisher, and a headless Chrome implementation of it.
package browser

import (
	"context"
	"time"

	"github.com/jonathan/note-harvester/internal/types"
)

// Driver is the set of browsing operations the harvester needs. One Driver
// owns exactly one browsing context; it is not safe for concurrent use.
type Driver interface {
	// Navigate loads url in the current tab and waits for the document body.
	Navigate(ctx context.Context, url string) error
	// Location returns the URL the tab currently shows, after any redirects.
	Location(ctx context.Context) (string, error)
	// SetCookie injects one cookie into the context's cookie jar.
	SetCookie(ctx context.Context, cookie types.Cookie) error
	// Locate waits up to timeout for selector to appear and returns the first
	// match. A selector that never appears yields *ElementTimeoutError.
	Locate(ctx context.Context, selector string, timeout time.Duration) (*Element, error)
	// HTML returns the rendered outer HTML of the document.
	HTML(ctx context.Context) (string, error)
	// Evaluate runs script in the page and unmarshals its result into res
	// (res may be nil).
	Evaluate(ctx context.Context, script string, res any) error
	// ScrollToBottom scrolls the window to the end of the document and returns
	// the document height before scrolling.
	ScrollToBottom(ctx context.Context) (int64, error)
	// UploadFiles sets paths on the file input matched by selector.
	UploadFiles(ctx context.Context, selector string, paths []string, timeout time.Duration) error
	// Click clicks the first visible element matched by selector.
	Click(ctx context.Context, selector string, timeout time.Duration) error
}

// Element is a snapshot of a located DOM node.
type Element struct {
	Selector   string
	Text       string
	Attributes map[string]string
}

// Attr returns the named attribute of the element.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil || e.Attributes == nil {
		return "", false
	}
	v, ok := e.Attributes[name]
	return v, ok
}

// Find is Locate with the timeout folded into an optional result, so call
// sites choose their own fallback.
func Find(ctx context.Context, d Driver, selector string, timeout time.Duration) (*Element, bool) {
	el, err := d.Locate(ctx, selector, timeout)
	if err != nil || el == nil {
		return nil, false
	}
	return el, true
}
