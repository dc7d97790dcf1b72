package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageBody = `<!DOCTYPE html><html><body><ul id="urlHistory"></ul></body></html>`

func htmlHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(pageBody))
	})
}

func TestGzipMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()

	GzipMiddleware(htmlHandler(http.StatusSeeOther)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Equal(t, []string{"text/html; charset=utf-8"}, rec.Header().Values("Content-Type"))
	assert.Equal(t, "Accept-Encoding", rec.Header().Get("Vary"))

	reader, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	defer reader.Close()

	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, pageBody, string(body))
}

func TestGzipMiddleware_Passthrough(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		acceptEncoding string
		contentType    string
		body           string
	}{
		{name: "client without gzip", method: http.MethodGet, contentType: "text/html", body: pageBody},
		{name: "image", method: http.MethodGet, acceptEncoding: "gzip", contentType: "image/png", body: "\x89PNG"},
		{name: "empty body", method: http.MethodGet, acceptEncoding: "gzip", contentType: "text/html", body: ""},
		{name: "head", method: http.MethodHead, acceptEncoding: "gzip", contentType: "text/html", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			})

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()

			GzipMiddleware(handler).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestGzipReader(t *testing.T) {
	var gotURL string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotURL = r.PostForm.Get("url")
		w.WriteHeader(http.StatusOK)
	})

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(url.Values{"url": {"https://example.com"}}.Encode()))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	req := httptest.NewRequest(http.MethodPost, "/shorten", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	GzipReader(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", gotURL)
}

func TestGzipReader_Invalid(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()

	GzipReader(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGzipReader_NoGzip(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write(body)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("url=x"))
	rec := httptest.NewRecorder()

	GzipReader(handler).ServeHTTP(rec, req)

	assert.Equal(t, "url=x", rec.Body.String())
}
