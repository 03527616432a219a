package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"popup-checkout/internal/config"
	"popup-checkout/internal/db"
	"popup-checkout/internal/logging"
	"popup-checkout/internal/seed"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New("seed", logging.Config{Level: cfg.App.LogLevel})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN, db.Options{MaxConns: cfg.DB.MaxConns, ApplicationName: cfg.App.Name + "-seed"})
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, logger); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}
