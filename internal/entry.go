// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jotter/internal/api"
	"github.com/starford/jotter/internal/boundary"
	"github.com/starford/jotter/internal/clientstate"
	"github.com/starford/jotter/internal/display"
	"github.com/starford/jotter/internal/mcpserver"
	"github.com/starford/jotter/internal/notify"
	"github.com/starford/jotter/internal/picker"
	"github.com/starford/jotter/internal/storage"
	"github.com/starford/jotter/internal/tui"
	"github.com/starford/jotter/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{stdin: os.Stdin, stdout: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// privileged is the in-process privileged side: store, channel, watcher and
// the Local bridge over them.
type privileged struct {
	broker  *notify.Broker
	watcher *watch.Watcher
	local   *boundary.Local
}

func newPrivileged(cfg *Config, p picker.Picker, logger *slog.Logger) *privileged {
	store := storage.NewFS(
		storage.WithExtension(cfg.Notes.Extension),
		storage.WithJunkFiles(cfg.Notes.JunkFiles...),
	)
	broker := notify.NewBroker(cfg.Watch.Debounce)

	opts := []boundary.Option{
		boundary.WithMenuTimeout(cfg.Menu.Timeout),
		boundary.WithExtension(cfg.Notes.Extension),
		boundary.WithLogger(logger),
	}
	if p != nil {
		opts = append(opts, boundary.WithPicker(p))
	}

	var w *watch.Watcher
	if cfg.Watch.Enabled {
		w = watch.New(broker, watch.WithDebounce(cfg.Watch.Debounce), watch.WithLogger(logger))
		opts = append(opts, boundary.WithWatcher(w))
	}

	return &privileged{
		broker:  broker,
		watcher: w,
		local:   boundary.NewLocal(store, broker, opts...),
	}
}

// runWatcher blocks until ctx is done. Without a watcher it just waits.
func (p *privileged) runWatcher(ctx context.Context) error {
	if p.watcher == nil {
		<-ctx.Done()
		return nil
	}
	return p.watcher.Run(ctx)
}

func (p *privileged) close() {
	p.local.Close()
	p.broker.Close()
}

func configuredPicker(cfg *Config) picker.Picker {
	if len(cfg.Picker.Command) == 0 {
		return nil
	}
	return picker.Exec{Command: cfg.Picker.Command}
}

// RunServer serves the bridge over HTTP until a signal arrives or ctx is done.
func RunServer(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("extension", cfg.Notes.Extension),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.Bool("auth", cfg.Auth.AuthEnabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	priv := newPrivileged(cfg, configuredPicker(cfg), logger)
	defer priv.close()

	apiRouter := api.NewRouter(priv.local, cfg.Auth.AuthEnabled(), cfg.Auth.Token, priv.broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return priv.runWatcher(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open event streams only end when the broker closes.
		priv.close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once shutdown has begun.
var errShutdown = errors.New("shutdown")

// RunTUI runs the terminal display. The privileged side runs in-process
// unless a remote server is configured.
func RunTUI(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logFile, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.App.LogLevel)
	slog.SetDefault(logger)

	state, err := clientstate.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("init client state: %w", err)
	}
	defer state.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		bridge boundary.Bridge
		dp     *tui.DirPicker
	)
	if cfg.Remote.Enabled() {
		logger.Info("Using remote server", slog.String("url", cfg.Remote.URL))
		bridge = api.NewClient(cfg.Remote.URL, cfg.Remote.Token, api.WithClientLogger(logger))
	} else {
		p := configuredPicker(cfg)
		if p == nil {
			dp = tui.NewDirPicker("")
			p = dp
		}
		priv := newPrivileged(cfg, p, logger)
		defer priv.close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := priv.runWatcher(ctx); err != nil {
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
		}()
		defer func() { <-done }()
		// Registered last so it runs first.
		defer cancel()

		bridge = priv.local
	}

	session := display.NewSession(bridge, state,
		display.WithExtension(cfg.Notes.Extension),
		display.WithSidebar(cfg.UI.SidebarWidth, cfg.UI.MinSidebarWidth, cfg.UI.ResizeBand),
		display.WithLogger(logger),
	)
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Close()

	logger.Info("TUI starting", slog.String("state_path", cfg.State.Path))
	return tui.Run(ctx, session, dp)
}

// RunMCP serves the notes tools over stdio. Logs go to stderr, stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	state, err := clientstate.Open(cfg.State.Path)
	if err != nil {
		return fmt.Errorf("init client state: %w", err)
	}
	defer state.Close()

	// Menus and watching have no consumer here; the store still needs
	// the per-file lock and failure logging of the privileged side.
	cfg.Watch.Enabled = false
	priv := newPrivileged(cfg, nil, logger)
	defer priv.close()

	srv := mcpserver.New(priv.local.Store(), state,
		mcpserver.WithExtension(cfg.Notes.Extension),
		mcpserver.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server starting", slog.String("state_path", cfg.State.Path))
	if err := srv.ServeStdio(ctx, app.stdin, app.stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
