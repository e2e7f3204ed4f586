package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"standfinder/internal/config"
	"standfinder/internal/handler"
	"standfinder/internal/logging"
	"standfinder/internal/metrics"
	"standfinder/internal/model"
	"standfinder/internal/repository"
	"standfinder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Color:  cfg.Logging.Color,
	})
	if cfg.Logging.Fluent.Enabled {
		client, err := logging.NewFluentClient(logging.FluentOptions{
			Host:      cfg.Logging.Fluent.Host,
			Port:      cfg.Logging.Fluent.Port,
			TagPrefix: cfg.Logging.Fluent.Tag,
		})
		if err != nil {
			logger.Error("failed to create fluent client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		logger = slog.New(logging.Tee(
			logger.Handler(),
			logging.NewFluentHandler(client, logging.ParseLevel(cfg.Logging.Level)),
		))
	}
	slog.SetDefault(logger)

	logger.Info("standfinder starting",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stands, err := loadStands(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load stands", "source", cfg.Fixture.Source, "error", err)
		os.Exit(1)
	}
	logger.Info("stands loaded", "source", cfg.Fixture.Source, "count", len(stands))

	// Initialize services
	m := metrics.New(prometheus.DefaultRegisterer)
	sessions := service.NewSessionManager(stands, service.StoreOptions{
		LegacySizeSort: cfg.Store.LegacySizeSort,
		Logger:         logger,
		OnOperation:    m.ObserveOperation,
	}, cfg.Session.TTL)
	defer sessions.CloseAll()
	m.WatchSessions(sessions.Len)

	if cfg.Store.LegacySizeSort {
		logger.Warn("legacy size sort enabled: sorting by size orders by price and drops the active filter")
	}

	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval)

	opts := handler.RouterOptions{
		Logger:         logger,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		Build:          handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		AllowedOrigins: handler.SplitList(cfg.Server.AllowedOrigins),
		AllowedMethods: handler.SplitList(cfg.Server.AllowedMethods),
		AllowedHeaders: handler.SplitList(cfg.Server.AllowedHeaders),
	}
	if cfg.Server.StaticDir != "" {
		opts.UI = os.DirFS(cfg.Server.StaticDir)
		if _, err := fs.Stat(opts.UI, "index.html"); err != nil {
			logger.Warn("static dir has no index.html", "dir", cfg.Server.StaticDir, "error", err)
		}
		logger.Info("serving frontend assets", "dir", cfg.Server.StaticDir)
	}
	router := handler.NewRouter(handler.NewStandHandler(sessions, m), opts)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", addr, "api", fmt.Sprintf("http://localhost:%d/api/v1", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("shutting down server")

	// Open SSE streams end when their sessions close
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// loadStands reads the base dataset from the configured fixture source
func loadStands(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]model.Stand, error) {
	var source repository.StandSource
	switch cfg.Fixture.Source {
	case config.SourcePostgres:
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		defer repo.Close()
		logger.Info("connected to PostgreSQL database")
		source = repo
	default:
		source = repository.NewFileSource(cfg.Fixture.Path)
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return source.LoadStands(loadCtx)
}
