package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/ledger-transaction-cache/internal/cache"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/config"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/ledger-transaction-cache/internal/interfaces"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/ledger"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/server"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/storage/memory"
	"github.com/sheikh-saqib/ledger-transaction-cache/internal/storage/postgres"
	rediscache "github.com/sheikh-saqib/ledger-transaction-cache/internal/storage/redis"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.WithField("error", err.Error()).Warn("Invalid configuration values replaced by defaults")
	}

	ctx := context.Background()

	var store interfaces.LedgerStore = memory.NewMemoryLedgerStore()
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("failed to connect to DB: %v", err)
		}
		pg := postgres.NewPostgresLedgerStore(db)
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatalf("failed to migrate DB: %v", err)
		}
		store = pg
	}

	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to Redis: %v", err)
		}
		store = rediscache.NewAccountCache(store, rdb, cfg.AccountCacheTTL, logger)
	}

	ledgerOpts := []ledger.Option{ledger.WithLogger(logger)}
	var publisher *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers)
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(publisher, cfg.KafkaTopic))
	}
	ledgerService := ledger.NewLedger(store, ledgerOpts...)

	txCache := cache.New(ledgerService,
		cache.WithFlushInterval(cfg.FlushInterval),
		cache.WithLogger(logger),
	)
	if err := txCache.Start(); err != nil {
		logger.Fatalf("failed to start transaction cache: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           server.NewHandler(ledgerService, txCache, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting server on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithField("error", err.Error()).Error("HTTP server shutdown failed")
	}

	// no more producers: flush whatever is still cached
	txCache.Shutdown()

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.WithField("error", err.Error()).Error("Closing Kafka publisher failed")
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
