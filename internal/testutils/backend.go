// Package testutils provides an in-memory stand-in for the shortener backend.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MikhailRaia/url-shortener-client/internal/model"
)

// Route names accepted by Calls and Override.
const (
	RouteShorten = "shorten"
	RouteList    = "list"
	RouteDelete  = "delete"
	RouteHealth  = "health"
)

type entry struct {
	original string
	code     string
}

// Backend serves the create/list/delete/health contract from memory.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	entries   []entry
	nextID    int
	calls     map[string]int
	overrides map[string]http.HandlerFunc
}

// NewBackend starts a backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		calls:     make(map[string]int),
		overrides: make(map[string]http.HandlerFunc),
	}

	r := chi.NewRouter()
	r.Post("/api/shorten", b.route(RouteShorten, b.handleShorten))
	r.Get("/api/urls", b.route(RouteList, b.handleList))
	r.Delete("/api/urls/{code}", b.route(RouteDelete, b.handleDelete))
	r.Get("/health", b.route(RouteHealth, b.handleHealth))

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)

	return b
}

// URL is the backend base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Calls reports how many requests hit a route.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.calls[route]
}

// Override replaces a route's handler. Calls are still counted.
func (b *Backend) Override(route string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.overrides[route] = h
}

// Seed stores an entry directly.
func (b *Backend) Seed(original, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, entry{original: original, code: code})
}

// Codes lists stored short codes, oldest first.
func (b *Backend) Codes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	codes := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		codes = append(codes, e.code)
	}
	return codes
}

// ErrorReply returns a handler answering status with {"error": msg}.
func ErrorReply(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, model.ErrorResponse{Error: msg})
	}
}

// RawReply returns a handler answering status with body verbatim.
func RawReply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (b *Backend) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[name]++
		override := b.overrides[name]
		b.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		h(w, r)
	}
}

func (b *Backend) handleShorten(w http.ResponseWriter, r *http.Request) {
	var req model.ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "URL necesaria"})
		return
	}

	original := strings.TrimSpace(req.URL)
	if !strings.HasPrefix(original, "http://") && !strings.HasPrefix(original, "https://") {
		original = "https://" + original
	}

	b.mu.Lock()
	b.nextID++
	code := fmt.Sprintf("c%d", b.nextID)
	b.entries = append(b.entries, entry{original: original, code: code})
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, model.ShortenResult{
		OriginalURL: original,
		ShortURL:    b.Server.URL + "/" + code,
	})
}

func (b *Backend) handleList(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	records := make([]model.URLRecord, 0, len(b.entries))
	for i := len(b.entries) - 1; i >= 0; i-- {
		records = append(records, model.URLRecord{
			Original: b.entries[i].original,
			Short:    b.Server.URL + "/" + b.entries[i].code,
		})
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, records)
}

func (b *Backend) handleDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	b.mu.Lock()
	idx := -1
	for i, e := range b.entries {
		if e.code == code {
			idx = i
			break
		}
	}
	if idx >= 0 {
		b.entries = append(b.entries[:idx], b.entries[idx+1:]...)
	}
	b.mu.Unlock()

	if idx < 0 {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "URL no encontrada"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "URL eliminada correctamente"})
}

func (b *Backend) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthStatus{Status: "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
