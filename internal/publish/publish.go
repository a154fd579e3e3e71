// Package publish fills in and submits the platform's note editor through an
// authenticated browser session.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/note-harvester/internal/browser"
	"github.com/jonathan/note-harvester/internal/logging"
)

// DefaultPublishURL is the creator-center editor for image notes.
const DefaultPublishURL = "https://creator.xiaohongshu.com/publish/publish?source=official&from=tab_switch&target=image"

// TitleLimit is the maximum title length in runes accepted by the editor.
const TitleLimit = 20

// Step names reported in StepError.
const (
	StepNavigate = "navigate"
	StepUpload   = "upload images"
	StepTitle    = "enter title"
	StepBody     = "enter body"
	StepSubmit   = "submit"
)

// StepError reports which editor step failed.
type StepError struct {
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("publish failed at step %q: %v", e.Step, e.Cause)
	}
	return fmt.Sprintf("publish failed at step %q", e.Step)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// Post is the content of one note to publish.
type Post struct {
	Title      string
	Body       string
	ImagePaths []string
	Hashtags   []string
}

// Selectors locate the editor controls.
type Selectors struct {
	FileInput string
	Title     string
	Body      string
	Submit    string
}

// DefaultSelectors returns the selectors for the current editor markup.
func DefaultSelectors() Selectors {
	return Selectors{
		FileInput: "input[type='file']",
		Title:     "input.d-text",
		Body:      "div.tiptap.ProseMirror[contenteditable='true']",
		Submit:    "button.publishBtn",
	}
}

// Options configures a Publisher.
type Options struct {
	URL            string
	ElementTimeout time.Duration
	// PageSettle is waited after navigation and after submitting.
	PageSettle time.Duration
	// UploadSettle is waited for the editor to process uploaded images.
	UploadSettle time.Duration
	Selectors    Selectors
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		URL:            DefaultPublishURL,
		ElementTimeout: 10 * time.Second,
		PageSettle:     5 * time.Second,
		UploadSettle:   10 * time.Second,
		Selectors:      DefaultSelectors(),
	}
}

// Publisher drives the note editor.
type Publisher struct {
	opts Options
	log  logging.Logger
}

// New creates a Publisher. Empty options fall back to the defaults.
func New(opts Options, log logging.Logger) *Publisher {
	def := DefaultOptions()
	if opts.URL == "" {
		opts.URL = def.URL
	}
	if opts.ElementTimeout <= 0 {
		opts.ElementTimeout = def.ElementTimeout
	}
	if opts.Selectors == (Selectors{}) {
		opts.Selectors = def.Selectors
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Publisher{opts: opts, log: log}
}

// Publish opens the editor, uploads the images, fills in title and body and
// submits. The driver must already hold an authenticated session.
func (p *Publisher) Publish(ctx context.Context, d browser.Driver, post Post) error {
	title := strings.TrimSpace(post.Title)
	if utf8.RuneCountInString(title) > TitleLimit {
		title = string([]rune(title)[:TitleLimit])
		p.log.Warn("title truncated", logging.String("title", title))
	}

	if err := d.Navigate(ctx, p.opts.URL); err != nil {
		return &StepError{Step: StepNavigate, Cause: err}
	}
	if err := sleep(ctx, p.opts.PageSettle); err != nil {
		return &StepError{Step: StepNavigate, Cause: err}
	}

	if len(post.ImagePaths) > 0 {
		paths, err := absPaths(post.ImagePaths)
		if err != nil {
			return &StepError{Step: StepUpload, Cause: err}
		}
		if err := d.UploadFiles(ctx, p.opts.Selectors.FileInput, paths, p.opts.ElementTimeout); err != nil {
			return &StepError{Step: StepUpload, Cause: err}
		}
		p.log.Info("images uploaded", logging.Int("count", len(paths)))
		if err := sleep(ctx, p.opts.UploadSettle); err != nil {
			return &StepError{Step: StepUpload, Cause: err}
		}
	}

	if err := p.fill(ctx, d, p.opts.Selectors.Title, setInputScript, title); err != nil {
		return &StepError{Step: StepTitle, Cause: err}
	}

	body := ComposeBody(post.Body, post.Hashtags)
	if err := p.fill(ctx, d, p.opts.Selectors.Body, insertTextScript, body); err != nil {
		return &StepError{Step: StepBody, Cause: err}
	}

	if err := d.Click(ctx, p.opts.Selectors.Submit, p.opts.ElementTimeout); err != nil {
		return &StepError{Step: StepSubmit, Cause: err}
	}
	if err := sleep(ctx, p.opts.PageSettle); err != nil {
		return &StepError{Step: StepSubmit, Cause: err}
	}

	p.log.Info("note published", logging.String("title", title))
	return nil
}

// fill waits for selector and runs script with the selector and value.
func (p *Publisher) fill(ctx context.Context, d browser.Driver, selector, script, value string) error {
	if _, err := d.Locate(ctx, selector, p.opts.ElementTimeout); err != nil {
		return err
	}
	sel, err := json.Marshal(selector)
	if err != nil {
		return err
	}
	val, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return d.Evaluate(ctx, fmt.Sprintf(script, sel, val), nil)
}

// setInputScript assigns through the native setter so framework-bound inputs
// see the change.
const setInputScript = `(() => {
	const el = document.querySelector(%s);
	const setter = Object.getOwnPropertyDescriptor(window.HTMLInputElement.prototype, 'value').set;
	setter.call(el, %s);
	el.dispatchEvent(new Event('input', {bubbles: true}));
})()`

const insertTextScript = `(() => {
	const el = document.querySelector(%s);
	el.focus();
	document.execCommand('insertText', false, %s);
})()`

// ComposeBody appends hashtags to body as " #tag".
func ComposeBody(body string, hashtags []string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(body))
	for _, tag := range hashtags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		sb.WriteString(" #")
		sb.WriteString(tag)
	}
	return sb.String()
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out[i] = abs
	}
	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
