package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"popup-checkout/internal/config"
	"popup-checkout/internal/db"
	"popup-checkout/internal/events"
	"popup-checkout/internal/httpserver"
	"popup-checkout/internal/logging"
	"popup-checkout/internal/oracle"
	applicationrepo "popup-checkout/internal/repository/application"
	popupcityrepo "popup-checkout/internal/repository/popupcity"
	productrepo "popup-checkout/internal/repository/product"
	"popup-checkout/internal/repository/session"
	checkoutsvc "popup-checkout/internal/service/checkout"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New("api", logging.Config{Level: cfg.App.LogLevel, File: cfg.App.LogFile})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DB.DSN, db.Options{MaxConns: cfg.DB.MaxConns, ApplicationName: cfg.App.Name + "-api"})
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	var (
		sessions session.Store
		idem     session.IdempotencyStore
	)
	switch cfg.Session.Store {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer rdb.Close()
		sessions = session.NewRedis(rdb, cfg.Session.TTL)
		idem = session.NewRedisIdempotency(rdb, cfg.Idempotency.TTL)
	default:
		sessions = session.NewMemory(cfg.Session.TTL)
		idem = session.NewMemoryIdempotency(cfg.Idempotency.TTL)
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Rabbit.URL != "" {
		rabbit, err := events.DialRabbit(cfg.Rabbit.URL)
		if err != nil {
			logger.Fatal("connect to rabbitmq", zap.Error(err))
		}
		defer rabbit.Close()
		publisher = rabbit
	}

	oracleClient := oracle.NewClient(oracle.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  cfg.Oracle.APIKey,
		Timeout: cfg.Oracle.Timeout,
	}, nil, logger)

	checkoutService := checkoutsvc.New(checkoutsvc.Deps{
		Cities:       popupcityrepo.NewPostgres(dbpool),
		Products:     productrepo.NewPostgres(dbpool, logger),
		Applications: applicationrepo.NewPostgres(dbpool, logger),
		Sessions:     sessions,
		Idempotency:  idem,
		Oracle:       oracleClient,
		Events:       publisher,
		Logger:       logger,
	})

	srv := httpserver.New(cfg.App.HTTPAddr, logger, dbpool, httpserver.Deps{
		Checkout:    checkoutService,
		CORSOrigins: cfg.App.CORSOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
