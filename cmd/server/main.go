package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dlsl-isg/reaction-ring/internal/api"
	"github.com/dlsl-isg/reaction-ring/internal/config"
	"github.com/dlsl-isg/reaction-ring/internal/factory"
	"github.com/dlsl-isg/reaction-ring/internal/services/identity"
	"github.com/dlsl-isg/reaction-ring/internal/services/scan"
	filestorage "github.com/dlsl-isg/reaction-ring/internal/storage/file"
	redisstorage "github.com/dlsl-isg/reaction-ring/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Build factory config from environment
	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StoreBackend,
		MaxCatch:    cfg.MaxCatch,
		ScanConfig: scan.Config{
			IdleTimeout: cfg.ScanIdleTimeout,
			EmailDomain: cfg.StudentEmailDomain,
		},
		IdentityConfig: identity.Config{
			BaseURL:     cfg.StudentAPIURL,
			EmailDomain: cfg.StudentEmailDomain,
			Timeout:     cfg.ResolveTimeout,
		},
		ImportChunkSize: cfg.ImportChunkSize,
		LeaderboardSize: cfg.LeaderboardSize,
	}

	switch cfg.StoreBackend {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	case factory.StorageTypeFile:
		fileCfg := filestorage.DefaultConfig()
		fileCfg.Dir = cfg.DataDir
		fileCfg.PollInterval = cfg.PollInterval
		factoryCfg.FileConfig = &fileCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start the event hub and roster cache, then build the router on top
	app.Start(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Cache:             app.Cache,
		SessionController: app.SessionController,
		ScanBuffer:        app.ScanBuffer,
		Importer:          app.Importer,
		Hub:               app.Hub,
		Clock:             app.Clock,
		LeaderboardSize:   cfg.LeaderboardSize,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	server := api.NewServer(router, serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("store", cfg.StoreBackend))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	if err := app.Close(); err != nil {
		logger.Error("close error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
