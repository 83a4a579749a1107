package handler

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/repository"
	"github.com/d60-Lab/content-engine/internal/service"
)

// Handler 内部管理接口（排障 / 事件回放）
type Handler struct {
	posts       repository.PostRepository
	submissions repository.SubmissionRepository
	reconciler  *service.Reconciler
}

func New(db *gorm.DB, reconciler *service.Reconciler) *Handler {
	return &Handler{
		posts:       repository.NewPostRepository(db),
		submissions: repository.NewSubmissionRepository(db),
		reconciler:  reconciler,
	}
}

// RegisterRoutes 挂载路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(otelgin.Middleware("content-engine"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.GET("/healthz", h.Health)
	v1 := r.Group("/api/v1")
	{
		v1.GET("/posts/:id", h.GetPost)
		v1.GET("/submissions/:id", h.GetSubmission)
		v1.POST("/ingest", h.ReplayEvent)
	}
}
