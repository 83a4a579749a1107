package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/content-engine/config"
	"github.com/d60-Lab/content-engine/internal/api/handler"
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

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log.Level); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db := must(database.InitDB(cfg))
	if err := database.Migrate(db); err != nil {
		panic(err)
	}

	reconciler := service.NewReconciler(db, shortid.NewGenerator(), cfg.Ingest)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.New(db, reconciler).RegisterRoutes(r)

	logger.Info("admin server listening", zap.String("addr", cfg.Server.Addr))
	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Error("server exited", zap.Error(err))
	}
}
