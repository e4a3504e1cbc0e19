package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Trigerxx3/cyber/internal/config"
	"github.com/Trigerxx3/cyber/internal/flows"
	"github.com/Trigerxx3/cyber/internal/handler"
	"github.com/Trigerxx3/cyber/internal/providers"
	"github.com/Trigerxx3/cyber/internal/repository"
	"github.com/Trigerxx3/cyber/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// Load configuration
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if cfg.Log.Production {
		logger, err = zap.NewProduction()
		if err != nil {
			panic(err)
		}
	}
	defer logger.Sync()

	logger.Info("Starting content monitor...")

	ctx := context.Background()

	// Initialize LLM client (multi-provider with rate limiting)
	providerConfigs := cfg.ProviderConfigs()
	if len(providerConfigs) == 0 {
		logger.Fatal("No AI provider configured. Set GEMINI_API_KEY or list providers in " + config.Path())
	}

	llmClient, err := providers.Build(ctx, providerConfigs, cfg.MaxFailuresBeforeSwitch, logger)
	if err != nil {
		logger.Fatal("Failed to initialize AI providers", zap.Error(err))
	}
	defer llmClient.Close()

	// Initialize document store; without one the process runs with persistence disabled
	store := openStore(ctx, cfg.Store, logger)
	if store != nil {
		defer store.Close()
	}

	// Initialize services
	runner := flows.NewRunner(llmClient, logger)
	actions := service.NewActions(runner, store, logger)

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(actions, runner, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger(logger), handler.CORS())

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("Server starting", zap.String("address", serverAddr))

	// Graceful shutdown
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Get model info for logging
	modelName := "unknown"
	if m, ok := runner.ModelInfo()["model"].(string); ok {
		modelName = m
	}

	logger.Info("Content monitor is running",
		zap.String("port", cfg.Server.Port),
		zap.String("model", modelName),
		zap.Int("providers", len(llmClient.GetProvidersInfo())),
		zap.Bool("persistence", actions.PersistenceEnabled()))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// openStore returns nil when the store is not configured or fails to start.
func openStore(ctx context.Context, cfg repository.Config, logger *zap.Logger) repository.Store {
	if strings.EqualFold(cfg.Type, "sqlite") {
		// Create data directory if not exists
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			logger.Warn("Failed to create data directory", zap.String("path", cfg.Path), zap.Error(err))
		}
	}

	store, err := repository.Open(ctx, cfg, logger)
	switch {
	case errors.Is(err, repository.ErrNotConfigured):
		logger.Warn("Document store is not configured, persistence disabled",
			zap.String("store", cfg.Type),
			zap.Error(err))
		return nil
	case err != nil:
		logger.Error("Failed to initialize document store, persistence disabled",
			zap.String("store", cfg.Type),
			zap.Error(err))
		return nil
	}

	logger.Info("Document store initialized", zap.String("store", store.Name()))
	return store
}
