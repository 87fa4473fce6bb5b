// Package app initializes and runs the user-record service.
// It configures logging, the entity store, the trusted-subnet gate and
// routing, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/patric-chuzhbe/socialgood/internal/config"
	"github.com/patric-chuzhbe/socialgood/internal/entitystore"
	"github.com/patric-chuzhbe/socialgood/internal/ipchecker"
	"github.com/patric-chuzhbe/socialgood/internal/logger"
	"github.com/patric-chuzhbe/socialgood/internal/router"
)

// App encapsulates the configuration, the entity store and the HTTP handler
// needed to run the service.
type App struct {
	cfg         *config.Config
	store       *entitystore.Store
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - creating the entity store
// - setting up the router and middleware
func New(optionsProto ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(optionsProto...)
	if err != nil {
		return nil, fmt.Errorf("in internal/app/app.go/New(): error while `config.New()` calling: %w", err)
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("in internal/app/app.go/New(): error while `logger.Init()` calling: %w", err)
	}

	app.store = entitystore.New()

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(app.store, checker)

	return app, nil
}

// Handler returns the HTTP handler of the service.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and stops the server upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.serve(ctx)
}

func (a *App) serve(ctx context.Context) error {
	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Stopping server...", "users", a.store.Count(ctx))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-serverErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
