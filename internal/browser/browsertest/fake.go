// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/note-harvester/internal/browser"
	"github.com/jonathan/note-harvester/internal/types"
)

// Page is the scripted content served for one URL.
type Page struct {
	HTML     string
	Elements map[string]browser.Element
	// RedirectTo makes Location report a different URL after navigation.
	RedirectTo string
	// Heights is returned by successive ScrollToBottom calls; the last value
	// repeats once exhausted.
	Heights []int64
}

// Driver is a scripted browser.Driver. The zero value is not usable; use New.
type Driver struct {
	mu sync.Mutex

	Pages map[string]*Page
	// NavigateErr, when set, is consulted on every navigation.
	NavigateErr func(url string) error
	// CookieErr, when set, is consulted for every injected cookie.
	CookieErr func(c types.Cookie) error

	Navigations []string
	Cookies     []types.Cookie
	Scrolls     int
	Scripts     []string
	Uploads     map[string][]string
	Clicks      []string

	current    string
	location   string
	scrollSeen map[string]int
}

var _ browser.Driver = (*Driver)(nil)

// New returns an empty fake driver.
func New() *Driver {
	return &Driver{
		Pages:      make(map[string]*Page),
		Uploads:    make(map[string][]string),
		scrollSeen: make(map[string]int),
	}
}

// AddPage registers p under url and returns it for further setup.
func (d *Driver) AddPage(url string, p *Page) *Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p.Elements == nil {
		p.Elements = make(map[string]browser.Element)
	}
	d.Pages[url] = p
	return p
}

// Navigate implements browser.Driver.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Navigations = append(d.Navigations, url)
	if d.NavigateErr != nil {
		if err := d.NavigateErr(url); err != nil {
			return &browser.Error{Op: "navigate " + url, Cause: err}
		}
	}
	d.current = url
	d.location = url
	if p, ok := d.Pages[url]; ok && p.RedirectTo != "" {
		d.location = p.RedirectTo
	}
	return nil
}

// Location implements browser.Driver.
func (d *Driver) Location(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location, nil
}

// SetCookie implements browser.Driver.
func (d *Driver) SetCookie(_ context.Context, c types.Cookie) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CookieErr != nil {
		if err := d.CookieErr(c); err != nil {
			return &browser.Error{Op: "set cookie " + c.Name, Cause: err}
		}
	}
	d.Cookies = append(d.Cookies, c)
	return nil
}

// Locate implements browser.Driver. Missing selectors time out immediately.
func (d *Driver) Locate(ctx context.Context, selector string, timeout time.Duration) (*browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.Pages[d.current]; ok {
		if el, ok := p.Elements[selector]; ok {
			el.Selector = selector
			return &el, nil
		}
	}
	return nil, &browser.ElementTimeoutError{Selector: selector, Timeout: timeout}
}

// HTML implements browser.Driver.
func (d *Driver) HTML(_ context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.Pages[d.current]; ok {
		return p.HTML, nil
	}
	return "<html><body></body></html>", nil
}

// Evaluate implements browser.Driver. Scripts are recorded; res receives null.
func (d *Driver) Evaluate(_ context.Context, script string, res any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Scripts = append(d.Scripts, script)
	if res != nil {
		return json.Unmarshal([]byte("null"), res)
	}
	return nil
}

// ScrollToBottom implements browser.Driver.
func (d *Driver) ScrollToBottom(_ context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Scrolls++

	p, ok := d.Pages[d.current]
	if !ok || len(p.Heights) == 0 {
		// Keep growing so callers never see an end-of-list signal.
		return int64(d.Scrolls * 1000), nil
	}
	i := d.scrollSeen[d.current]
	d.scrollSeen[d.current] = i + 1
	if i >= len(p.Heights) {
		i = len(p.Heights) - 1
	}
	return p.Heights[i], nil
}

// UploadFiles implements browser.Driver.
func (d *Driver) UploadFiles(_ context.Context, selector string, paths []string, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasElement(selector) {
		return &browser.ElementTimeoutError{Selector: selector, Timeout: timeout}
	}
	d.Uploads[selector] = append(d.Uploads[selector], paths...)
	return nil
}

// Click implements browser.Driver.
func (d *Driver) Click(_ context.Context, selector string, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasElement(selector) {
		return &browser.ElementTimeoutError{Selector: selector, Timeout: timeout}
	}
	d.Clicks = append(d.Clicks, selector)
	return nil
}

func (d *Driver) hasElement(selector string) bool {
	p, ok := d.Pages[d.current]
	if !ok {
		return false
	}
	_, ok = p.Elements[selector]
	return ok
}

// String is a debugging aid.
func (d *Driver) String() string {
	return fmt.Sprintf("browsertest.Driver{current: %q, navigations: %d}", d.current, len(d.Navigations))
}
