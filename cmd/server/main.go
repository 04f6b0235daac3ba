package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/opencollective/frontend/internal/api"
	"github.com/opencollective/frontend/internal/api/middleware"
	"github.com/opencollective/frontend/internal/backend"
	"github.com/opencollective/frontend/internal/config"
	"github.com/opencollective/frontend/internal/metrics"
	"github.com/opencollective/frontend/internal/static"
	"github.com/opencollective/frontend/internal/storage"
	"github.com/opencollective/frontend/internal/view"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// API client; signed in visitors get a copy carrying their token
	client := backend.NewClient(cfg.API, logger)
	backends := func(token string) middleware.Backend {
		if token == "" {
			return client
		}
		return client.WithToken(token)
	}

	visitors, closeVisitors, err := newVisitorProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeVisitors()

	renderer, err := view.NewRenderer(logger)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	svc := api.Services{
		Backends: backends,
		Visitors: visitors,
		Renderer: renderer,
		Responder: static.NewResponder(static.Config{
			StaticDir:    cfg.StaticDir,
			TemplatesDir: cfg.TemplatesDir,
			Host:         cfg.WebsiteURL,
		}, logger),
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		svc.Metrics = metrics.NewWithRegistry(cfg.Metrics.Namespace, reg)
		svc.Gatherer = reg
	}

	router, err := api.NewRouter(cfg, svc, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("api_url", cfg.API.URL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// newVisitorProvider picks Redis when REDIS_ADDR is set, the sealed cookie otherwise
func newVisitorProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Provider, func(), error) {
	secure := cfg.IsProduction()
	if cfg.Visitor.RedisAddr == "" {
		return storage.NewCookieProvider(cfg.Visitor.CookieSecret, secure, logger), func() {}, nil
	}

	rdb, err := storage.NewRedisClient(ctx, storage.RedisConfig{
		Addr:     cfg.Visitor.RedisAddr,
		Password: cfg.Visitor.RedisPassword,
		DB:       cfg.Visitor.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Visitor state stored in redis", zap.String("addr", cfg.Visitor.RedisAddr))
	return storage.NewRedisProvider(rdb, secure, logger), func() { _ = rdb.Close() }, nil
}
