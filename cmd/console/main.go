package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tableside/internal/api"
	"tableside/internal/config"
	"tableside/internal/console"
	"tableside/internal/infrastructure/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	client, err := api.New(cfg.API.BaseURL, cfg.API.RequestTimeout, cfg.API.RateLimit, cfg.API.RateBurst, zapLogger)
	if err != nil {
		zapLogger.Fatal("creating api client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := console.NewApp(client, os.Stdin, os.Stdout, zapLogger)
	if err := app.Run(ctx); err != nil {
		zapLogger.Fatal("console exited with error", zap.Error(err))
	}
}
