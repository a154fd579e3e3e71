package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("Chrome not installed")
}

func TestChrome_NavigateLocateAndScroll(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body style="height:4000px">
			<div id="detail-title" data-id="n1">Hello notes</div>
		</body></html>`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c, err := NewChrome(ctx, DefaultChromeOptions())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Navigate(ctx, server.URL))

	el, err := c.Locate(ctx, "div#detail-title", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Hello notes", el.Text)
	id, _ := el.Attr("data-id")
	assert.Equal(t, "n1", id)

	var webdriver any
	require.NoError(t, c.Evaluate(ctx, `navigator.webdriver`, &webdriver))
	assert.Nil(t, webdriver)

	height, err := c.ScrollToBottom(ctx)
	require.NoError(t, err)
	assert.Greater(t, height, int64(1000))

	_, err = c.Locate(ctx, "span.missing", 200*time.Millisecond)
	var timeoutErr *ElementTimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}
