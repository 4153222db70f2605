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

	"golang.org/x/sync/errgroup"

	"github.com/starford/noted/internal/api"
	"github.com/starford/noted/internal/mcpserver"
	"github.com/starford/noted/internal/notestore"
	"github.com/starford/noted/internal/noteservice"
	"github.com/starford/noted/internal/sse"
	pkgconfig "github.com/starford/noted/pkg/config"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore connects the configured backend. It never retries.
func openStore(ctx context.Context, cfg StorageConfig) (notestore.Store, error) {
	switch cfg.Driver {
	case DriverMongo:
		return notestore.OpenMongo(ctx, notestore.MongoOptions{
			URI:            cfg.Mongo.URI,
			Database:       cfg.Mongo.Database,
			Collection:     cfg.Mongo.Collection,
			ConnectTimeout: cfg.Mongo.ConnectTimeout,
		})
	case DriverSQLite:
		return notestore.OpenSQLite(ctx, cfg.SQLite.Path)
	case DriverPostgres:
		return notestore.OpenPostgres(ctx, cfg.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// storeOrOpen returns the injected store or connects the configured backend.
func (app *application) storeOrOpen(ctx context.Context, logger *slog.Logger) (notestore.Store, error) {
	if app.store != nil {
		logger.Info("Using provided storage")
		return app.store, nil
	}
	store, err := openStore(ctx, app.config.Storage)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to storage", slog.String("driver", app.config.Storage.Driver))
	return store, nil
}

func closeStore(logger *slog.Logger, store notestore.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logger.Warn("storage close failed", slog.String("error", err.Error()))
	}
}

func (app *application) logWriter(fallback io.Writer) io.Writer {
	if app.logOutput != nil {
		return app.logOutput
	}
	return fallback
}

// Run connects the store and serves HTTP until ctx is cancelled or a shutdown
// signal arrives. If the store cannot be reached no listener is opened.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)
	logger := newLogger(app.logWriter(os.Stdout), level)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := app.storeOrOpen(ctx, logger)
	if err != nil {
		logger.Error("Storage connection failed", slog.String("error", err.Error()))
		return fmt.Errorf("init storage: %w", err)
	}
	defer closeStore(logger, store)

	broker := sse.NewBroker(0)
	defer broker.Close()

	svc := noteservice.NewService(store, broker)
	router := api.NewRouter(svc, api.RouterOptions{
		AllowedOrigins: cfg.App.CORS.AllowedOrigins,
		AllowedMethods: cfg.App.CORS.AllowedMethods,
		Events:         broker,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// SSE streams only end when the broker closes their channels.
	httpServer.RegisterOnShutdown(broker.Close)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Reload the log level when the config file changes.
	if app.configPath != "" {
		g.Go(func() error {
			err := pkgconfig.Watch(gCtx, app.configPath, func() {
				next := NewDefaultConfig()
				if err := pkgconfig.Load(app.configPath, next); err != nil {
					logger.Warn("config reload failed", slog.String("error", err.Error()))
					return
				}
				level.Set(next.App.LogLevel)
				logger.Info("Configuration reloaded", slog.String("log_level", next.App.LogLevel.String()))
			})
			if err != nil {
				logger.Warn("config watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Handle shutdown signals.
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
		defer stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP connects the store and serves the MCP tools on stdio. Logs go to
// stderr because stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	level := new(slog.LevelVar)
	level.Set(app.config.App.LogLevel)
	logger := newLogger(app.logWriter(os.Stderr), level)
	slog.SetDefault(logger)

	store, err := app.storeOrOpen(ctx, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer closeStore(logger, store)

	svc := noteservice.NewService(store, nil)
	logger.Info("Starting MCP server", slog.String("version", app.version))
	return mcpserver.New(svc, app.version).ServeStdio()
}
