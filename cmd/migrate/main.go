package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"popup-checkout/internal/config"
	"popup-checkout/internal/db"
	"popup-checkout/internal/logging"
	"popup-checkout/internal/migrate"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New("migrate", logging.Config{Level: cfg.App.LogLevel})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN, db.Options{MaxConns: cfg.DB.MaxConns, ApplicationName: cfg.App.Name + "-migrate"})
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if *down > 0 {
		if err := migrate.Rollback(ctx, pool, *down, logger); err != nil {
			logger.Fatal("roll back migrations", zap.Error(err))
		}
		return
	}
	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}
	logger.Info("migrations applied")
}
