package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ministagram/internal/config"
	"ministagram/internal/devserver"
	"ministagram/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := devserver.Run(ctx, cfg, zl); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
