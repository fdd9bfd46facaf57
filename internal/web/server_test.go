package web

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagetools/webp-batch/internal/config"
	"github.com/imagetools/webp-batch/internal/convert"
)

const testPassword = "hunter2"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)

	cfg := config.ServerConfig{
		Addr:          ":0",
		PasswordHash:  hash,
		SessionTTL:    config.Duration(time.Hour),
		MaxUploadSize: 32 << 20,
	}
	srv, err := New(cfg, convert.DefaultOptions(), zerolog.New(io.Discard))
	require.NoError(t, err)
	return srv
}

func login(t *testing.T, handler http.Handler) *http.Cookie {
	t.Helper()
	form := url.Values{"password": {testPassword}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestNew_RequiresPasswordHash(t *testing.T) {
	cfg := config.ServerConfig{SessionTTL: config.Duration(time.Hour)}
	_, err := New(cfg, convert.DefaultOptions(), zerolog.New(io.Discard))
	assert.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	handler := newTestServer(t).Handler()

	form := url.Values{"password": {"not-it"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestIndex_RequiresAuth(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestIndex_AfterLogin(t *testing.T) {
	handler := newTestServer(t).Handler()
	cookie := login(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Convert images to WebP")
}

func TestLogout_RevokesSession(t *testing.T) {
	handler := newTestServer(t).Handler()
	cookie := login(t, handler)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func uploadRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for name, data := range files {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 8), uint8(y * 10), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestConvert_ReturnsZipBundle(t *testing.T) {
	handler := newTestServer(t).Handler()
	cookie := login(t, handler)

	req := uploadRequest(t, map[string]string{"quality": "80"}, map[string][]byte{
		"photo.png":  pngBytes(t),
		"other.png":  pngBytes(t),
		"readme.txt": []byte("not an image"),
	})
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"photo.webp", "other.webp"}, names)
}

func TestConvert_RequiresAuth(t *testing.T) {
	handler := newTestServer(t).Handler()

	req := uploadRequest(t, nil, map[string][]byte{"photo.png": pngBytes(t)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestConvert_NoFiles(t *testing.T) {
	handler := newTestServer(t).Handler()
	cookie := login(t, handler)

	req := uploadRequest(t, map[string]string{"quality": "80"}, nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestConvert_InvalidQuality(t *testing.T) {
	handler := newTestServer(t).Handler()
	cookie := login(t, handler)

	req := uploadRequest(t, map[string]string{"quality": "400"}, map[string][]byte{
		"photo.png": pngBytes(t),
	})
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSessionStore_Expiry(t *testing.T) {
	store := newSessionStore(time.Millisecond)
	id := store.create()
	require.True(t, store.valid(id))

	time.Sleep(5 * time.Millisecond)
	assert.False(t, store.valid(id))
}
