package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/content-engine/internal/service"
	"github.com/d60-Lab/content-engine/pkg/response"
)

func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// GetPost 查帖子详情
// @Summary 按 id 查帖子
// @Tags 内容
// @Param id path string true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, post)
}

// GetSubmission 查投稿状态
// @Summary 按 id 查投稿
// @Tags 内容
// @Param id path string true "投稿ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/submissions/{id} [get]
func (h *Handler) GetSubmission(c *gin.Context) {
	sub, err := h.submissions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "submission not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{
		"id":      sub.ID,
		"status":  sub.Status,
		"reason":  sub.Reason,
		"message": service.RejectReasonMessage(sub.Reason),
	})
}

// ReplayEvent 同步回放一条 content-published 事件
// @Summary 手工回放入库事件
// @Tags 内容
// @Accept json
// @Produce json
// @Param request body service.ContentPublishedEvent true "事件体"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/ingest [post]
func (h *Handler) ReplayEvent(c *gin.Context) {
	var ev service.ContentPublishedEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	messageID := "replay-" + uuid.New().String()
	out := h.reconciler.Handle(c.Request.Context(), messageID, &ev)
	response.Success(c, gin.H{
		"status":  out.Status,
		"reason":  out.Reason,
		"post_id": out.PostID,
	})
}
