// Package server wires configuration, storage, the authentication services
// and both transports into a runnable application.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/sidhilynx/internal/logging"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
	"github.com/dmitrijs2005/sidhilynx/internal/server/httpapi"
	"github.com/dmitrijs2005/sidhilynx/internal/server/metrics"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
	"github.com/dmitrijs2005/sidhilynx/internal/telemetry"

	gs "github.com/dmitrijs2005/sidhilynx/internal/server/grpc"
)

const serviceName = "sidhilynx"

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	auth     *services.Authenticator
	metrics  *metrics.Metrics
	shutdown telemetry.ShutdownFunc
}

// NewApp opens the store, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config, version string) (*App, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	shutdown, err := telemetry.Init(ctx, serviceName, version, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	repos, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		auth:     services.NewAuthenticator(repos, c, logger, nil),
		metrics:  metrics.New(),
		shutdown: shutdown,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(httpapi.Options{
		Auth:               app.auth,
		Registry:           app.auth.Registry(),
		Metrics:            app.metrics,
		Logger:             app.logger,
		AdminAPIKey:        app.config.AdminAPIKey,
		CORSOrigins:        app.config.CORSOrigins,
		RateLimitPerMinute: app.config.RateLimitPerMinute,
		TrustProxy:         app.config.TrustProxy,
	})

	s := httpapi.NewServer(app.config.HTTPAddr, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.auth, app.metrics, app.config.TrustProxy)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or a server fails, then
// releases the store and flushes traces.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "http", app.config.HTTPAddr, "grpc", app.config.GRPCAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "closing store", "error", err)
	}
	if err := app.shutdown(context.WithoutCancel(ctx)); err != nil {
		app.logger.Error(ctx, "flushing traces", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
