package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/note-harvester/internal/browser/browsertest"
	"github.com/jonathan/note-harvester/internal/types"
)

const cookieExport = `[
	{"name":"a1","value":"v1","domain":".xiaohongshu.com","path":"/","sameSite":"lax","storeId":"0","hostOnly":false,"session":false,"id":1,"expirationDate":1893456000},
	{"name":"web_session","value":"v2","domain":".xiaohongshu.com","path":"/","httpOnly":true,"secure":true},
	{"name":"webId","value":"v3","domain":"www.xiaohongshu.com","path":"/"}
]`

func writeCookies(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testOptions() Options {
	return Options{
		BaseURL:   "https://site.test",
		VerifyURL: "https://site.test/home",
	}
}

func TestSanitize_StripsLeadingDotAndUnsupportedFields(t *testing.T) {
	hostOnly := true
	id := 7
	in := types.Cookie{
		Name: "a", Value: "b", Domain: ".example.com", Path: "/",
		SameSite: "no_restriction", StoreID: "1", HostOnly: &hostOnly, ID: &id,
	}

	out := Sanitize(in)
	assert.Equal(t, "example.com", out.Domain)
	assert.Empty(t, out.SameSite)
	assert.Empty(t, out.StoreID)
	assert.Nil(t, out.HostOnly)
	assert.Nil(t, out.ID)
	assert.Equal(t, "/", out.Path)

	// The input is left untouched.
	assert.Equal(t, ".example.com", in.Domain)
	assert.Equal(t, "no_restriction", in.SameSite)
}

func TestSanitizeAll_NoLeadingDotEver(t *testing.T) {
	domains := []string{".a.com", "..b.com", "c.com", ".", ""}
	creds := make(types.CredentialSet, 0, len(domains))
	for _, d := range domains {
		creds = append(creds, types.Cookie{Name: "n", Value: "v", Domain: d})
	}

	out := SanitizeAll(creds)
	require.Len(t, out, len(domains))
	assert.Equal(t, "a.com", out[0].Domain)
	assert.Equal(t, "b.com", out[1].Domain)
	assert.Equal(t, "c.com", out[2].Domain)
	assert.Equal(t, "", out[3].Domain)
	for i, c := range out {
		assert.False(t, strings.HasPrefix(c.Domain, "."))
		assert.Equal(t, domains[i], creds[i].Domain)
	}
}

func TestLoadCredentials_Valid(t *testing.T) {
	creds, err := LoadCredentials(writeCookies(t, cookieExport))
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, "a1", creds[0].Name)
	assert.Equal(t, ".xiaohongshu.com", creds[0].Domain)
	assert.True(t, creds[1].HTTPOnly)
}

func TestLoadCredentials_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		message string
	}{
		{"empty path", func(*testing.T) string { return "" }, "credential path is empty"},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }, "credential file not found"},
		{"bad json", func(t *testing.T) string { return writeCookies(t, "{ nope") }, "not a valid cookie list"},
		{"not a list", func(t *testing.T) string { return writeCookies(t, `{"name":"a"}`) }, "not a valid cookie list"},
		{"empty list", func(t *testing.T) string { return writeCookies(t, `[]`) }, "not a valid cookie list"},
		{"missing domain", func(t *testing.T) string { return writeCookies(t, `[{"name":"a","value":"b"}]`) }, "not a valid cookie list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds, err := LoadCredentials(tt.path(t))
			assert.Nil(t, creds)

			var loadErr *CredentialLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestEstablish_Success(t *testing.T) {
	d := browsertest.New()
	d.CookieErr = func(c types.Cookie) error {
		if c.HTTPOnly {
			return errors.New("refused")
		}
		return nil
	}

	m := NewManager(testOptions(), nil)
	err := m.Establish(context.Background(), d, writeCookies(t, cookieExport))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://site.test", "https://site.test/home"}, d.Navigations)
	// The httpOnly record is skipped silently; the rest are injected sanitized.
	require.Len(t, d.Cookies, 2)
	for _, c := range d.Cookies {
		assert.False(t, strings.HasPrefix(c.Domain, "."), "domain %q keeps leading dot", c.Domain)
		assert.Empty(t, c.SameSite)
		assert.Empty(t, c.StoreID)
	}
}

func TestEstablish_LoginRedirectFails(t *testing.T) {
	d := browsertest.New()
	d.AddPage("https://site.test/home", &browsertest.Page{RedirectTo: "https://site.test/login?redirectPath=home"})

	m := NewManager(testOptions(), nil)
	err := m.Establish(context.Background(), d, writeCookies(t, cookieExport))

	var authErr *AuthVerificationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.URL, "/login")
	assert.Contains(t, err.Error(), "credentials are expired or invalid")
}

func TestEstablish_CredentialErrorStopsBeforeBrowsing(t *testing.T) {
	d := browsertest.New()

	m := NewManager(testOptions(), nil)
	err := m.Establish(context.Background(), d, filepath.Join(t.TempDir(), "missing.json"))

	var loadErr *CredentialLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Empty(t, d.Navigations)
	assert.Empty(t, d.Cookies)
}

func TestEstablish_BaseSiteUnreachable(t *testing.T) {
	d := browsertest.New()
	d.NavigateErr = func(string) error { return errors.New("net::ERR_NAME_NOT_RESOLVED") }

	m := NewManager(testOptions(), nil)
	err := m.Establish(context.Background(), d, writeCookies(t, cookieExport))

	var authErr *AuthVerificationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, err.Error(), "failed to open base site")
}

func TestIsLoginRedirect(t *testing.T) {
	assert.True(t, IsLoginRedirect("https://www.xiaohongshu.com/login"))
	assert.True(t, IsLoginRedirect("https://passport.example.com/register"))
	assert.True(t, IsLoginRedirect("https://site.test/LOGIN"))
	assert.False(t, IsLoginRedirect("https://www.xiaohongshu.com/explore"))
}
