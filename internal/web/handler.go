// Package web serves the shortener page over HTTP. Every request renders a
// fresh copy of the page through a controller, so the page contract is the
// same as in the terminal front end.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/url-shortener-client/internal/api"
	"github.com/MikhailRaia/url-shortener-client/internal/controller"
	"github.com/MikhailRaia/url-shortener-client/internal/dom"
	"github.com/MikhailRaia/url-shortener-client/internal/i18n"
	"github.com/MikhailRaia/url-shortener-client/internal/logger"
	"github.com/MikhailRaia/url-shortener-client/internal/middleware"
	"github.com/MikhailRaia/url-shortener-client/internal/model"
	"github.com/MikhailRaia/url-shortener-client/internal/view"
)

// maxFormSize bounds form bodies; the only field is a URL.
const maxFormSize = 64 << 10

// Backend is the backend client the web front end needs.
type Backend interface {
	controller.API
	Health(ctx context.Context) (model.HealthStatus, error)
}

// Handler serves the page, its form actions and static files.
type Handler struct {
	backend  Backend
	template string
	lang     string
	static   fs.FS
}

// NewHandler validates the page template and creates a Handler.
// static may be nil when no static files are served.
func NewHandler(backend Backend, template, lang string, static fs.FS) (*Handler, error) {
	if _, err := dom.ParseString(template); err != nil {
		return nil, fmt.Errorf("page template: %w", err)
	}

	return &Handler{
		backend:  backend,
		template: template,
		lang:     lang,
		static:   static,
	}, nil
}

// RegisterRoutes builds the router with the standard middleware chain.
func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)

	r.Get("/", h.handleIndex)
	r.Post("/shorten", h.handleShorten)
	r.Post("/urls/{code}/delete", h.handleDelete)
	r.Get("/health", h.handleHealth)

	if h.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(h.static))))
	}

	return r
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	c, err := h.newController(r, h.backend, false)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	_ = c.LoadHistory(r.Context())

	h.render(w, r, c.Page(), http.StatusOK)
}

func (h *Handler) handleShorten(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	c, err := h.newController(r, h.backend, false)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	status := http.StatusOK
	if err := c.Submit(r.Context(), r.PostForm.Get("url")); err != nil {
		status = statusFor(err)
		// Submit only reloads the history on success.
		_ = c.LoadHistory(r.Context())
	}

	h.render(w, r, c.Page(), status)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	client := &countingBackend{API: h.backend}
	c, err := h.newController(r, client, r.PostForm.Get("confirm") == "yes")
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	status := http.StatusOK
	if err := c.DeleteURL(r.Context(), code); err != nil {
		status = statusFor(err)
	}
	// A successful delete already reloaded the history.
	if client.lists == 0 {
		_ = c.LoadHistory(r.Context())
	}

	h.render(w, r, c.Page(), status)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status, err := h.backend.Health(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Backend health check failed")

		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(model.HealthStatus{Status: "unhealthy"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// newController builds a controller over a fresh page for one request.
// Alerts are rendered into the page's notices region.
func (h *Handler) newController(r *http.Request, client controller.API, confirmed bool) (*controller.Controller, error) {
	page, err := dom.ParseString(h.template)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	board := noticeBoard{page: page}
	c := controller.New(page, client,
		controller.WithNotifier(board),
		controller.WithConfirmer(formConfirmer{confirmed: confirmed, board: board}),
		controller.WithPrinter(i18n.NewPrinter(h.lang)),
		controller.WithLogger(log.With().Str("request_id", chimiddleware.GetReqID(r.Context())).Logger()),
	)
	return c, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page *dom.Page, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := page.Render(w); err != nil {
		log.Error().Err(err).Str("uri", r.RequestURI).Msg("Failed to render page")
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().Err(err).Str("uri", r.RequestURI).Msg("Failed to prepare page")
	w.WriteHeader(http.StatusInternalServerError)
}

// statusFor maps a controller error to the page's response status.
func statusFor(err error) int {
	if errors.Is(err, controller.ErrEmptyURL) || errors.Is(err, api.ErrEmptyShortCode) {
		return http.StatusBadRequest
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

// noticeBoard shows alerts in the notices region, or logs them when the
// template has none.
type noticeBoard struct {
	page *dom.Page
}

func (n noticeBoard) Alert(msg string) {
	region := n.page.Notices()
	if region == nil {
		log.Info().Str("notice", msg).Msg("Page has no notices region")
		return
	}
	region.Append(view.Notice(msg))
}

// formConfirmer answers confirmations with the form's confirm checkbox.
// An unconfirmed request shows the question so the user can tick it.
type formConfirmer struct {
	confirmed bool
	board     noticeBoard
}

func (f formConfirmer) Confirm(msg string) bool {
	if !f.confirmed {
		f.board.Alert(msg)
	}
	return f.confirmed
}

// countingBackend counts history fetches made during one request.
type countingBackend struct {
	controller.API
	lists int
}

func (b *countingBackend) ListURLs(ctx context.Context) ([]model.URLRecord, error) {
	b.lists++
	return b.API.ListURLs(ctx)
}
