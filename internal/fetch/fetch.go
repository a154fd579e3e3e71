// Package fetch downloads assets over plain HTTP, independent of the
// browser session.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for asset requests.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Error represents a failed asset fetch.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Downloader streams remote assets to a writer.
type Downloader struct {
	client *resty.Client
}

// NewDownloader creates a Downloader. A nil opts uses DefaultOptions.
func NewDownloader(opts *Options) *Downloader {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeaders(opts.Headers)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Downloader{client: client}
}

// Download GETs rawURL and copies the body into w, returning the number of
// bytes written. The body is streamed, not buffered.
func (d *Downloader) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return 0, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return 0, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if resp.StatusCode() != http.StatusOK {
		return 0, &Error{
			URL:        rawURL,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode()),
			StatusCode: resp.StatusCode(),
		}
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, &Error{URL: rawURL, Message: "failed to read response body", StatusCode: resp.StatusCode(), Cause: err}
	}
	return n, nil
}
