package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload_Success(t *testing.T) {
	var gotUA, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("\xff\xd8\xff\xe0fakejpeg"))
	}))
	defer server.Close()

	d := NewDownloader(&Options{Headers: map[string]string{"Referer": "https://site.test/"}})

	var buf bytes.Buffer
	n, err := d.Download(context.Background(), server.URL+"/img/abc?imageView2", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, "\xff\xd8\xff\xe0fakejpeg", buf.String())
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "https://site.test/", gotReferer)
}

func TestDownload_InvalidURL(t *testing.T) {
	d := NewDownloader(nil)

	_, err := d.Download(context.Background(), "not-a-valid-url", &bytes.Buffer{})
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestDownload_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("denied"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	_, err := NewDownloader(nil).Download(context.Background(), server.URL, &buf)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "403")
	assert.Zero(t, buf.Len(), "error bodies must not reach the writer")
}

func TestDownload_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDownloader(nil).Download(ctx, server.URL, &bytes.Buffer{})
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.Canceled)
}
