package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPage(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>hello</html>"))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()))

	body, err := c.FetchPage(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", body)
	assert.Contains(t, gotUA, "Mozilla/5.0")
}

func TestFetchPage_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()), WithMaxRetries(5))

	body, err := c.FetchPage(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPage_PermanentFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()), WithMaxRetries(5))

	_, err := c.FetchPage(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "404 should not be retried")
}

func TestDownloadImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.jpg", "/b.png":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("imagedata"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(WithHTTPClient(srv.Client()))

	urls := []string{
		srv.URL + "/a.jpg",
		srv.URL + "/b.png",
		srv.URL + "/page.html", // rejected: not an image content type
		srv.URL + "/missing.jpg",
	}
	saved, err := c.DownloadImages(context.Background(), urls, dir)

	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.FileExists(t, filepath.Join(dir, "a.jpg"))
	assert.FileExists(t, filepath.Join(dir, "b.png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDownloadImages_CollidingBasenames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("from " + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	// A stale file occupying the first collision fallback must survive too.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_00_a.jpg"), []byte("stale"), 0o644))
	c := NewClient(WithHTTPClient(srv.Client()))

	urls := []string{
		srv.URL + "/x/a.jpg",
		srv.URL + "/y/a.jpg",
	}
	saved, err := c.DownloadImages(context.Background(), urls, dir)

	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	first, err := os.ReadFile(filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "from /x/a.jpg", string(first))

	stale, err := os.ReadFile(filepath.Join(dir, "001_00_a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "stale", string(stale))

	second, err := os.ReadFile(filepath.Join(dir, "001_01_a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "from /y/a.jpg", string(second))
}

func TestDownloadImages_RespectsCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(WithHTTPClient(srv.Client()), WithMaxImages(2))

	urls := []string{
		srv.URL + "/1.png",
		srv.URL + "/2.png",
		srv.URL + "/3.png",
	}
	saved, err := c.DownloadImages(context.Background(), urls, dir)

	require.NoError(t, err)
	assert.Equal(t, 2, saved)
}

func TestDownloadFilename(t *testing.T) {
	tests := []struct {
		url   string
		index int
		want  string
	}{
		{"https://example.com/photos/house.jpg", 0, "house.jpg"},
		{"https://example.com/photos/house.jpg?w=1200", 1, "house.jpg"},
		{"https://example.com/", 2, "image_002.jpg"},
		{"https://example.com/gallery", 3, "image_003.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, downloadFilename(tt.url, tt.index), tt.url)
	}
}
