package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aaronlmathis/infrascope/internal/api"
	"github.com/aaronlmathis/infrascope/internal/config"
	"github.com/aaronlmathis/infrascope/internal/logging"
	"github.com/aaronlmathis/infrascope/internal/metrics"
	"github.com/aaronlmathis/infrascope/internal/search"
	"github.com/aaronlmathis/infrascope/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Log startup information
	info := version.Get()
	logger.Info("Starting infrascope",
		zap.String("version", info.Version),
		zap.String("gitCommit", info.GitCommit),
		zap.String("buildDate", info.BuildDate),
		zap.String("goVersion", info.GoVersion),
		zap.String("addr", cfg.Server.Addr),
	)

	// Initialize search backend client
	searchClient, err := search.NewHTTPClient(logger, search.HTTPConfig{
		URL:     cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create search backend client", zap.Error(err))
	}

	// Build the sealed metric catalog
	catalog, err := metrics.DefaultCatalog()
	if err != nil {
		logger.Fatal("Invalid metric catalog", zap.Error(err))
	}

	metricsService := metrics.NewService(logger, searchClient, catalog)

	// Create API server
	apiServer, err := api.NewServer(logger, cfg, metricsService)
	if err != nil {
		logger.Fatal("Failed to create API server", zap.Error(err))
	}

	// Create HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: apiServer.Handler(),
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...")

	// Give the server a maximum of 30 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited")
}
