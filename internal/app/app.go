package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/MikhailRaia/url-shortener-client/internal/api"
	"github.com/MikhailRaia/url-shortener-client/internal/assets"
	"github.com/MikhailRaia/url-shortener-client/internal/clipboard"
	"github.com/MikhailRaia/url-shortener-client/internal/config"
	"github.com/MikhailRaia/url-shortener-client/internal/controller"
	"github.com/MikhailRaia/url-shortener-client/internal/dom"
	"github.com/MikhailRaia/url-shortener-client/internal/i18n"
	"github.com/MikhailRaia/url-shortener-client/internal/logger"
	"github.com/MikhailRaia/url-shortener-client/internal/model"
	"github.com/MikhailRaia/url-shortener-client/internal/prompt"
	"github.com/MikhailRaia/url-shortener-client/internal/web"
)

const shutdownTimeout = 10 * time.Second

// ErrUsage is returned for a missing or unknown command.
var ErrUsage = errors.New("usage error")

const usage = `Usage: shortener [flags] <command> [args]

Commands:
  shorten <url>      shorten a URL and show the history
  list               show every shortened URL
  delete <code|url>  delete a shortened URL after confirmation
  copy <text>        copy text to the clipboard
  health             check the backend
  serve              run the web front end

Run "shortener -h" for the flags.
`

type App struct {
	config   *config.Config
	client   *api.Client
	template string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	clipboard clipboard.Writer
	flush     func()
}

// Option customizes an App.
type Option func(*App)

// WithIO replaces the standard streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdin = stdin
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithClipboard replaces the system clipboard.
func WithClipboard(w clipboard.Writer) Option {
	return func(a *App) { a.clipboard = w }
}

// NewApp sets up logging, error reporting and the backend client from cfg.
func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		config:    cfg,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		clipboard: clipboard.NewSystem(),
		template:  assets.IndexHTML,
	}
	for _, opt := range opts {
		opt(a)
	}

	logger.InitLogger(cfg.LogLevel, a.stderr)

	flush, err := logger.InitSentry(cfg.SentryDSN, "client")
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	a.flush = flush

	if cfg.PageTemplate != "" {
		data, err := os.ReadFile(cfg.PageTemplate)
		if err != nil {
			return nil, fmt.Errorf("read page template: %w", err)
		}
		a.template = string(data)
	}
	if _, err := dom.ParseString(a.template); err != nil {
		return nil, fmt.Errorf("page template: %w", err)
	}

	client, err := api.NewClient(cfg.APIBaseURL, api.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return nil, err
	}
	a.client = client

	return a, nil
}

// Close flushes pending error reports.
func (a *App) Close() {
	if a.flush != nil {
		a.flush()
	}
}

// Run executes one command. Failures are rendered before they are returned.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	log.Debug().Str("command", cmd).Strs("args", rest).Msg("Running command")

	switch cmd {
	case "shorten":
		if len(rest) != 1 {
			return a.usageError("shorten takes exactly one URL")
		}
		return a.shorten(ctx, rest[0])
	case "list":
		return a.list(ctx)
	case "delete":
		if len(rest) != 1 {
			return a.usageError("delete takes exactly one short code or short URL")
		}
		return a.delete(ctx, rest[0])
	case "copy":
		if len(rest) != 1 {
			return a.usageError("copy takes exactly one argument")
		}
		return a.copy(ctx, rest[0])
	case "health":
		return a.health(ctx)
	case "serve":
		return a.serve(ctx)
	default:
		return a.usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

func (a *App) shorten(ctx context.Context, rawURL string) error {
	c, err := a.newController()
	if err != nil {
		return err
	}

	err = c.Submit(ctx, rawURL)
	if perr := a.print(c.Page().Result()); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}
	return a.print(c.Page().History())
}

func (a *App) list(ctx context.Context) error {
	c, err := a.newController()
	if err != nil {
		return err
	}

	if err := c.LoadHistory(ctx); err != nil {
		return err
	}
	return a.print(c.Page().History())
}

// delete accepts either the bare short code or the whole short URL.
func (a *App) delete(ctx context.Context, arg string) error {
	c, err := a.newController()
	if err != nil {
		return err
	}

	before, err := c.Page().History().HTML()
	if err != nil {
		return err
	}

	if err := c.DeleteURL(ctx, model.ShortCode(arg)); err != nil {
		return err
	}

	after, err := c.Page().History().HTML()
	if err != nil {
		return err
	}
	if after == before {
		return nil
	}
	return a.print(c.Page().History())
}

func (a *App) copy(ctx context.Context, text string) error {
	c, err := a.newController()
	if err != nil {
		return err
	}
	return c.CopyToClipboard(ctx, text)
}

func (a *App) health(ctx context.Context) error {
	status, err := a.client.Health(ctx)
	if err != nil {
		fmt.Fprintln(a.stdout, i18n.NewPrinter(a.config.Language).Sprintf(i18n.ServerUnreachable))
		return err
	}

	fmt.Fprintln(a.stdout, status.Status)
	return nil
}

// webHandler builds the router of the web front end.
func (a *App) webHandler() (http.Handler, error) {
	static, err := assets.Static()
	if err != nil {
		return nil, fmt.Errorf("static files: %w", err)
	}

	h, err := web.NewHandler(a.client, a.template, a.config.Language, static)
	if err != nil {
		return nil, err
	}
	return h.RegisterRoutes(), nil
}

// serve runs the web front end until ctx is canceled.
func (a *App) serve(ctx context.Context) error {
	handler, err := a.webHandler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("address", a.config.ServerAddress).
			Str("api", a.config.APIBaseURL).
			Msg("Starting web front end")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down web front end")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) newController() (*controller.Controller, error) {
	page, err := dom.ParseString(a.template)
	if err != nil {
		return nil, fmt.Errorf("page template: %w", err)
	}

	term := prompt.NewTerminal(a.stdin, a.stdout, a.config.AssumeYes)

	return controller.New(page, a.client,
		controller.WithNotifier(term),
		controller.WithConfirmer(term),
		controller.WithClipboard(a.clipboard, clipboard.NewOSC52(a.stderr)),
		controller.WithPrinter(i18n.NewPrinter(a.config.Language)),
	), nil
}

func (a *App) print(r *dom.Region) error {
	var out string
	if a.config.Output == "html" {
		html, err := r.HTML()
		if err != nil {
			return err
		}
		out = html
	} else {
		out = r.Text()
	}

	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(a.stdout, out)
	return err
}

func (a *App) usageError(msg string) error {
	fmt.Fprintf(a.stderr, "%s\n\n%s", msg, usage)
	return fmt.Errorf("%w: %s", ErrUsage, msg)
}
