package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/content-engine/config"
	"github.com/d60-Lab/content-engine/internal/queue"
	"github.com/d60-Lab/content-engine/internal/service"
	"github.com/d60-Lab/content-engine/pkg/database"
	"github.com/d60-Lab/content-engine/pkg/logger"
	"github.com/d60-Lab/content-engine/pkg/shortid"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// logMailer 占位投递：真实投递实现由部署方注入
type logMailer struct{}

func (logMailer) Send(_ context.Context, template, recipient string, _ map[string]any) error {
	logger.Info("mail dispatched", zap.String("template", template), zap.String("recipient", recipient))
	return nil
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	db := must(database.InitDB(cfg))
	if err := database.Migrate(db); err != nil {
		panic(err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	reconciler := service.NewReconciler(db, shortid.NewGenerator(), cfg.Ingest)
	consumer := queue.NewConsumer(rdb, cfg.Ingest, reconciler)
	stopConsumer := must(consumer.Start(context.Background()))

	trending := service.NewTrendingJob(db, rdb, 10*time.Minute, 100)
	stopTrending := trending.Start()

	digest := service.NewDigestDispatcher(logMailer{}, cfg.Digest.QueueSize, cfg.Digest.RatePerSec)
	stopDigest := digest.Start(cfg.Digest.Workers)

	logger.Info("content worker started",
		zap.String("stream", cfg.Ingest.Stream),
		zap.String("group", cfg.Ingest.Group))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = stopDigest(shutdownCtx)
	_ = stopTrending(shutdownCtx)
	_ = stopConsumer(shutdownCtx)
	logger.Info("content worker stopped")
}
