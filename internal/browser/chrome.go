package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jonathan/note-harvester/internal/types"
)

// hideWebdriverScript is injected on every new document so the page does not
// see navigator.webdriver set by the automation session.
const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// DefaultNavigateTimeout bounds a single page load.
const DefaultNavigateTimeout = 30 * time.Second

// ChromeOptions configures the headless Chrome session.
type ChromeOptions struct {
	Headless        bool
	UserAgent       string
	NavigateTimeout time.Duration
	// ExecPath overrides Chrome discovery; empty uses chromedp's lookup.
	ExecPath string
}

// DefaultChromeOptions returns the options used by the CLI.
func DefaultChromeOptions() ChromeOptions {
	return ChromeOptions{
		Headless:        true,
		NavigateTimeout: DefaultNavigateTimeout,
	}
}

// Chrome is a Driver backed by a single chromedp tab.
type Chrome struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
}

var _ Driver = (*Chrome)(nil)

// NewChrome starts Chrome and opens the single tab every operation runs in.
// Close must be called to stop the browser process.
func NewChrome(ctx context.Context, opts ChromeOptions) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("start-maximized", true),
		chromedp.WindowSize(1440, 900),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run launches the browser.
	err := chromedp.Run(tab,
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(hideWebdriverScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, &Error{Op: "start", Cause: err}
	}

	navTimeout := opts.NavigateTimeout
	if navTimeout <= 0 {
		navTimeout = DefaultNavigateTimeout
	}

	return &Chrome{
		tab:         tab,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		navTimeout:  navTimeout,
	}, nil
}

// Close shuts the tab and the browser process down.
func (c *Chrome) Close() {
	c.cancelTab()
	c.cancelAlloc()
}

// runCtx derives a context from the tab that is also cancelled when the
// caller's ctx is done.
func (c *Chrome) runCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(c.tab, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// Navigate implements Driver.
func (c *Chrome) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := c.runCtx(ctx, c.navTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return &Error{Op: "navigate " + url, Cause: err}
	}
	return nil
}

// Location implements Driver.
func (c *Chrome) Location(ctx context.Context) (string, error) {
	runCtx, cancel := c.runCtx(ctx, c.navTimeout)
	defer cancel()

	var loc string
	if err := chromedp.Run(runCtx, chromedp.Location(&loc)); err != nil {
		return "", &Error{Op: "location", Cause: err}
	}
	return loc, nil
}

// SetCookie implements Driver.
func (c *Chrome) SetCookie(ctx context.Context, cookie types.Cookie) error {
	runCtx, cancel := c.runCtx(ctx, c.navTimeout)
	defer cancel()

	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := network.SetCookie(cookie.Name, cookie.Value).
			WithDomain(cookie.Domain).
			WithSecure(cookie.Secure).
			WithHTTPOnly(cookie.HTTPOnly)
		if cookie.Path != "" {
			params = params.WithPath(cookie.Path)
		}
		if cookie.ExpirationDate != nil {
			sec := int64(*cookie.ExpirationDate)
			expires := cdp.TimeSinceEpoch(time.Unix(sec, 0))
			params = params.WithExpires(&expires)
		}
		return params.Do(ctx)
	}))
	if err != nil {
		return &Error{Op: "set cookie " + cookie.Name, Cause: err}
	}
	return nil
}

// Locate implements Driver.
func (c *Chrome) Locate(ctx context.Context, selector string, timeout time.Duration) (*Element, error) {
	runCtx, cancel := c.runCtx(ctx, timeout)
	defer cancel()

	var text string
	attrs := make(map[string]string)
	err := chromedp.Run(runCtx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.Text(selector, &text, chromedp.ByQuery),
		chromedp.Attributes(selector, &attrs, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, &ElementTimeoutError{Selector: selector, Timeout: timeout}
		}
		return nil, &ElementTimeoutError{Selector: selector, Timeout: timeout, Cause: err}
	}

	return &Element{Selector: selector, Text: text, Attributes: attrs}, nil
}

// HTML implements Driver.
func (c *Chrome) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := c.runCtx(ctx, c.navTimeout)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", &Error{Op: "read html", Cause: err}
	}
	return html, nil
}

// Evaluate implements Driver.
func (c *Chrome) Evaluate(ctx context.Context, script string, res any) error {
	runCtx, cancel := c.runCtx(ctx, c.navTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, res)); err != nil {
		return &Error{Op: "evaluate", Cause: err}
	}
	return nil
}

// ScrollToBottom implements Driver.
func (c *Chrome) ScrollToBottom(ctx context.Context) (int64, error) {
	var height int64
	err := c.Evaluate(ctx, `(() => {
		const h = document.body.scrollHeight;
		window.scrollTo(0, h);
		return h;
	})()`, &height)
	return height, err
}

// UploadFiles implements Driver.
func (c *Chrome) UploadFiles(ctx context.Context, selector string, paths []string, timeout time.Duration) error {
	runCtx, cancel := c.runCtx(ctx, timeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.SetUploadFiles(selector, paths, chromedp.ByQuery),
	)
	if err != nil {
		return &ElementTimeoutError{Selector: selector, Timeout: timeout, Cause: err}
	}
	return nil
}

// Click implements Driver.
func (c *Chrome) Click(ctx context.Context, selector string, timeout time.Duration) error {
	runCtx, cancel := c.runCtx(ctx, timeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible),
	)
	if err != nil {
		return &ElementTimeoutError{Selector: selector, Timeout: timeout, Cause: err}
	}
	return nil
}
