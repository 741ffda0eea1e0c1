package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"planifia/internal/app"
	"planifia/internal/config"
	"planifia/internal/database"
	"planifia/internal/ingredients"
	"planifia/internal/llm"
	"planifia/internal/logging"
	"planifia/internal/metrics"
	"planifia/internal/planner"
	"planifia/internal/session"
	"planifia/internal/telegram"
	"planifia/internal/web"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid server config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 2. Storage
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	// 3. Ingredient inference
	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create llm client", zap.Error(err))
	}
	if c, ok := textGen.(llm.Closer); ok {
		defer c.Close()
	}

	resolver, err := ingredients.NewFromConfig(cfg, textGen, metricsStore, logger)
	if err != nil {
		logger.Fatal("failed to build ingredient resolver", zap.Error(err))
	}

	// 4. Application
	// Meals read the clock at save time; the ticker only reports week rollovers.
	go planner.NewTicker(time.Now, time.Minute, logger).Run(ctx)

	application := app.NewApp(db.SQL, resolver,
		app.WithMetrics(metricsStore),
		app.WithLocation(cfg.Location),
		app.WithLogger(logger),
	)

	dataDir := filepath.Dir(cfg.DatabasePath)
	opts := []web.Option{web.WithLogger(logger), web.WithDataDir(dataDir)}

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg, application, dataDir, logger)
		if err != nil {
			logger.Fatal("failed to initialize telegram bot", zap.Error(err))
		}
		opts = append(opts, web.WithTelegramWebhook(bot))
	}

	handler := web.NewHandler(application, session.NewTokens(cfg.SessionSecret), opts...)

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port), zap.String("llm_provider", cfg.LLMProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
