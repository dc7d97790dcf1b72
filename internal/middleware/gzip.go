package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-shortener-client/internal/pool"
)

// compressibleTypes are the content types the web front end serves that are worth compressing.
var compressibleTypes = []string{
	"text/html",
	"text/css",
	"text/plain",
	"application/javascript",
	"text/javascript",
	"application/json",
}

var bodies = pool.NewBuffers(32)

// GzipMiddleware buffers the response and compresses it with gzip when the
// client accepts it and the content type is compressible.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		body := bodies.Get()
		defer bodies.Put(body)

		wrapper := &bufferedWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           body,
		}

		next.ServeHTTP(wrapper, r)

		w.Header().Add("Vary", "Accept-Encoding")

		if body.Len() == 0 || !compressible(w.Header().Get("Content-Type")) ||
			w.Header().Get("Content-Encoding") != "" {
			w.WriteHeader(wrapper.statusCode)
			if _, err := w.Write(body.Bytes()); err != nil {
				log.Debug().Err(err).Msg("Failed to write response")
			}
			return
		}

		gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
		if err != nil {
			w.WriteHeader(wrapper.statusCode)
			w.Write(body.Bytes())
			return
		}
		defer gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.WriteHeader(wrapper.statusCode)

		if _, err := gz.Write(body.Bytes()); err != nil {
			log.Debug().Err(err).Msg("Failed to write gzipped response")
		}
	})
}

func compressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.HasPrefix(contentType, t) {
			return true
		}
	}
	return false
}

// bufferedWriter holds back the status and body until the handler returns.
type bufferedWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

// WriteHeader captures the status code without immediately writing it.
func (w *bufferedWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

// Write appends to the body buffer.
func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

// GzipReader transparently decompresses gzipped request bodies.
func GzipReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}

		gzReader, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "Failed to read gzipped request", http.StatusBadRequest)
			return
		}
		defer gzReader.Close()

		r.Body = io.NopCloser(gzReader)
		r.Header.Del("Content-Encoding")
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}
