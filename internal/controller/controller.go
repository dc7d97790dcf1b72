// Package controller drives the shortener page: it reacts to user actions,
// calls the backend and renders the outcome into the page regions.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/message"

	"github.com/MikhailRaia/url-shortener-client/internal/api"
	"github.com/MikhailRaia/url-shortener-client/internal/clipboard"
	"github.com/MikhailRaia/url-shortener-client/internal/dom"
	"github.com/MikhailRaia/url-shortener-client/internal/i18n"
	"github.com/MikhailRaia/url-shortener-client/internal/model"
	"github.com/MikhailRaia/url-shortener-client/internal/view"
)

var (
	// ErrEmptyURL is returned by Submit when the input is blank.
	ErrEmptyURL = errors.New("url is empty")
	// ErrSubmitInProgress is returned by Submit while a create call is running.
	ErrSubmitInProgress = errors.New("submit already in progress")
)

// API is the subset of the backend client the controller needs.
type API interface {
	Shorten(ctx context.Context, rawURL string) (model.ShortenResult, error)
	ListURLs(ctx context.Context) ([]model.URLRecord, error)
	DeleteURL(ctx context.Context, code string) error
}

// Notifier shows a short message to the user.
type Notifier interface {
	Alert(msg string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(msg string) bool
}

// Controller owns one page and the user actions on it.
type Controller struct {
	page      *dom.Page
	api       API
	notifier  Notifier
	confirmer Confirmer
	clipboard clipboard.Writer
	fallback  clipboard.Writer
	printer   *message.Printer
	logger    zerolog.Logger

	submitting atomic.Bool
	reloads    singleflight.Group
	// waiting counts LoadHistory callers attached to the current fetch.
	waiting atomic.Int32
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where alerts go.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithConfirmer sets who answers delete confirmations.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Controller) { c.confirmer = cf }
}

// WithClipboard sets the primary clipboard and the one used when it fails.
// fallback may be nil.
func WithClipboard(primary, fallback clipboard.Writer) Option {
	return func(c *Controller) {
		c.clipboard = primary
		c.fallback = fallback
	}
}

// WithPrinter sets the localized message printer.
func WithPrinter(p *message.Printer) Option {
	return func(c *Controller) { c.printer = p }
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller for page backed by client. Without options alerts
// are dropped, confirmations are declined and the system clipboard is used.
func New(page *dom.Page, client API, opts ...Option) *Controller {
	c := &Controller{
		page:      page,
		api:       client,
		notifier:  discard{},
		confirmer: discard{},
		clipboard: clipboard.NewSystem(),
		printer:   i18n.NewPrinter(""),
		logger:    log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Page returns the page the controller renders into.
func (c *Controller) Page() *dom.Page {
	return c.page
}

// Submit handles the shorten form. raw is what the user typed.
func (c *Controller) Submit(ctx context.Context, raw string) error {
	c.page.SetInputValue(raw)

	rawURL := strings.TrimSpace(raw)
	if rawURL == "" {
		c.page.Result().Replace(view.ValidationError(c.printer)...)
		return ErrEmptyURL
	}

	if !c.submitting.CompareAndSwap(false, true) {
		return ErrSubmitInProgress
	}
	defer c.submitting.Store(false)

	c.page.SetBusy(true)
	res, err := c.api.Shorten(ctx, rawURL)
	c.page.SetBusy(false)

	if err != nil {
		c.logger.Warn().Err(err).Str("url", rawURL).Msg("Failed to shorten URL")
		c.page.Result().Replace(c.failure(err)...)
		return fmt.Errorf("shorten %q: %w", rawURL, err)
	}

	c.logger.Info().
		Str("original_url", res.OriginalURL).
		Str("short_url", res.ShortURL).
		Msg("URL shortened")

	c.page.Result().Replace(view.ShortenResult(c.printer, res)...)

	// History failures are reported by LoadHistory itself.
	_ = c.LoadHistory(ctx)

	c.page.SetInputValue("")
	return nil
}

// LoadHistory replaces the history list with the backend's records.
// Concurrent calls share a single fetch, which is not bound to any one
// caller's cancellation; a caller whose ctx ends stops waiting for it.
// On failure the list is left as is.
func (c *Controller) LoadHistory(ctx context.Context) error {
	fetch := context.WithoutCancel(ctx)
	ch := c.reloads.DoChan("history", func() (interface{}, error) {
		return c.api.ListURLs(fetch)
	})

	c.waiting.Add(1)
	defer c.waiting.Add(-1)

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.logger.Debug().Err(ctx.Err()).Msg("Stopped waiting for URL history")
		return fmt.Errorf("load history: %w", ctx.Err())
	}

	if res.Err != nil {
		c.logger.Error().Err(res.Err).Msg("Failed to load URL history")
		c.notifier.Alert(c.printer.Sprintf(i18n.HistoryError, c.describe(res.Err)))
		return fmt.Errorf("load history: %w", res.Err)
	}

	records, _ := res.Val.([]model.URLRecord)
	c.page.History().Replace(view.History(c.printer, records)...)

	c.logger.Debug().Int("count", len(records)).Bool("shared", res.Shared).
		Int32("waiting", c.waiting.Load()).
		Msg("History loaded")
	return nil
}

// CopyToClipboard copies text, falling back to the secondary clipboard when
// the primary one fails. The user is told the copy happened either way.
func (c *Controller) CopyToClipboard(ctx context.Context, text string) error {
	err := c.clipboard.WriteText(ctx, text)
	if err == nil {
		c.notifier.Alert(c.printer.Sprintf(i18n.Copied, text))
		return nil
	}

	c.logger.Warn().Err(err).Msg("Clipboard write failed, using fallback")
	if c.fallback != nil {
		if err := c.fallback.WriteText(ctx, text); err != nil {
			c.logger.Warn().Err(err).Msg("Fallback clipboard write failed")
		}
	}

	c.notifier.Alert(c.printer.Sprintf(i18n.CopiedFallback))
	return nil
}

// DeleteURL removes the URL with the given short code after the user
// confirms, then reloads the history. Declining is not an error.
func (c *Controller) DeleteURL(ctx context.Context, code string) error {
	if code == "" {
		return api.ErrEmptyShortCode
	}

	if !c.confirmer.Confirm(c.printer.Sprintf(i18n.ConfirmDelete)) {
		c.logger.Debug().Str("code", code).Msg("Delete declined")
		return nil
	}

	if err := c.api.DeleteURL(ctx, code); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			c.logger.Warn().Err(err).Str("code", code).Msg("Backend refused delete")
			c.notifier.Alert(c.printer.Sprintf(i18n.DeleteError, c.describe(err)))
		} else {
			c.logger.Error().Err(err).Str("code", code).Msg("Failed to delete URL")
			c.notifier.Alert(c.printer.Sprintf(i18n.ServerUnreachable))
		}
		return fmt.Errorf("delete %q: %w", code, err)
	}

	c.logger.Info().Str("code", code).Msg("URL deleted")
	c.notifier.Alert(c.printer.Sprintf(i18n.Deleted))

	_ = c.LoadHistory(ctx)
	return nil
}

// failure renders err for the result region.
func (c *Controller) failure(err error) []*html.Node {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return view.APIError(c.printer, apiErr.Message)
	}
	return view.ConnectionError(c.printer, c.describe(err))
}

// describe is the user-facing text of err.
func (c *Controller) describe(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return c.printer.Sprintf(i18n.UnknownError)
		}
		return apiErr.Message
	}

	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Err.Error()
	}
	return err.Error()
}

type discard struct{}

func (discard) Alert(string) {}

func (discard) Confirm(string) bool { return false }
