// Package crawling traverses keyword searches in an authenticated browser
// session and persists every note it finds as an item folder plus a manifest.
package crawling

import (
	"fmt"
	"strings"
)

// CrawlError is returned by Acquire when the run could not finish. Keyword
// is the search that was pending when it stopped, if any.
type CrawlError struct {
	Keyword string
	Message string
	Cause   error
}

func (e *CrawlError) Error() string {
	var b strings.Builder
	b.WriteString("crawl error")
	if e.Keyword != "" {
		fmt.Fprintf(&b, " at keyword %q", e.Keyword)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *CrawlError) Unwrap() error {
	return e.Cause
}

// LinkExtractionError is a page whose HTML or URL could not be parsed.
type LinkExtractionError struct {
	PageURL string
	Message string
	Cause   error
}

func (e *LinkExtractionError) Error() string {
	msg := fmt.Sprintf("extract links from %s: %s", e.PageURL, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LinkExtractionError) Unwrap() error {
	return e.Cause
}

// ManifestError is a manifest that could not be encoded, validated, read or
// written.
type ManifestError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ManifestError) Error() string {
	msg := fmt.Sprintf("manifest %s: %s", e.Path, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ManifestError) Unwrap() error {
	return e.Cause
}
