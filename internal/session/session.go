package session

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/note-harvester/internal/browser"
	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/types"
)

// Default site endpoints.
const (
	DefaultBaseURL   = "https://www.xiaohongshu.com"
	DefaultVerifyURL = "https://www.xiaohongshu.com"
)

// loginMarkers are URL fragments that indicate a redirect to sign-in or sign-up.
var loginMarkers = []string{"login", "passport"}

// Options configures a Manager.
type Options struct {
	// BaseURL is opened before injection so the cookie jar has a site context.
	BaseURL string
	// VerifyURL is reloaded after injection; it redirects anonymous visitors.
	VerifyURL string
	// Settle is slept after navigation so client-side redirects can fire.
	Settle time.Duration
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		BaseURL:   DefaultBaseURL,
		VerifyURL: DefaultVerifyURL,
		Settle:    3 * time.Second,
	}
}

// Manager establishes the authenticated session on a browser.Driver.
type Manager struct {
	opts Options
	log  logging.Logger
}

// NewManager creates a Manager. A nil logger discards output.
func NewManager(opts Options, log logging.Logger) *Manager {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.VerifyURL == "" {
		opts.VerifyURL = opts.BaseURL
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{opts: opts, log: log}
}

// Establish loads credentialPath, injects the sanitized cookies into d and
// verifies that the session is logged in. Failures are
// *CredentialLoadError or *AuthVerificationError; callers should halt.
func (m *Manager) Establish(ctx context.Context, d browser.Driver, credentialPath string) error {
	creds, err := LoadCredentials(credentialPath)
	if err != nil {
		return err
	}
	m.log.Info("loaded credentials", logging.Int("count", len(creds)), logging.String("path", credentialPath))

	if err := d.Navigate(ctx, m.opts.BaseURL); err != nil {
		return &AuthVerificationError{URL: m.opts.BaseURL, Message: "failed to open base site", Cause: err}
	}
	if err := sleep(ctx, m.opts.Settle/3); err != nil {
		return err
	}

	if injected := m.inject(ctx, d, SanitizeAll(creds)); injected == 0 {
		m.log.Warn("no credential was accepted by the browser")
	}

	return m.verify(ctx, d)
}

// inject writes every cookie and returns how many were accepted. Rejections
// (httpOnly records refused by this path, for example) are expected and skipped.
func (m *Manager) inject(ctx context.Context, d browser.Driver, creds []types.Cookie) int {
	injected := 0
	for _, c := range creds {
		if err := d.SetCookie(ctx, c); err != nil {
			m.log.Debug("cookie rejected", logging.String("name", c.Name), logging.Err(err))
			continue
		}
		injected++
	}
	m.log.Info("injected credentials", logging.Int("accepted", injected), logging.Int("total", len(creds)))
	return injected
}

func (m *Manager) verify(ctx context.Context, d browser.Driver) error {
	if err := d.Navigate(ctx, m.opts.VerifyURL); err != nil {
		return &AuthVerificationError{URL: m.opts.VerifyURL, Message: "failed to reload verification page", Cause: err}
	}
	if err := sleep(ctx, m.opts.Settle); err != nil {
		return err
	}

	loc, err := d.Location(ctx)
	if err != nil {
		return &AuthVerificationError{URL: m.opts.VerifyURL, Message: "failed to read current location", Cause: err}
	}
	if IsLoginRedirect(loc) {
		return &AuthVerificationError{
			URL:     loc,
			Message: "redirected to login or registration page; credentials are expired or invalid, log in manually once and export the cookies again",
		}
	}

	m.log.Info("session established", logging.String("location", loc))
	return nil
}

// IsLoginRedirect reports whether location points at a sign-in or sign-up page.
func IsLoginRedirect(location string) bool {
	lower := strings.ToLower(location)
	for _, marker := range loginMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
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
