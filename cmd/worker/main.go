// Package main runs the bulk membership action worker standalone, for
// deployments that keep role grants and kicks off the API process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/omc-club/registration/config"
	"github.com/omc-club/registration/internal/audit"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/internal/worker"
	"github.com/omc-club/registration/pkg/database"
	"github.com/omc-club/registration/pkg/queue"
	"github.com/omc-club/registration/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	gateway := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.BotToken, cfg.Platform.GuildID, logger)
	auditRepo := audit.NewRepository(db)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	results := worker.NewRedisResults(rdb.Client)
	processor := worker.NewBulkProcessor(gateway, auditRepo, jobQueue, results, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go db.KeepAlive(workerCtx)
	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
