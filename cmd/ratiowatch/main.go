package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ratiowatch/config"
	"ratiowatch/internal/app"
	"ratiowatch/logger"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx, cfg, log); err != nil {
		log.Fatal("poller failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}
