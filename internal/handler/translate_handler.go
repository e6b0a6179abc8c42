package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

// TranslateHandler re-queues a stored post for translation, the manual
// path for posts whose automatic run failed or was dropped.
type TranslateHandler struct {
	cfg   *config.Config
	posts *repo.PostRepo
	queue *service.TranslateQueue
}

func NewTranslateHandler(cfg *config.Config, posts *repo.PostRepo, queue *service.TranslateQueue) *TranslateHandler {
	return &TranslateHandler{cfg: cfg, posts: posts, queue: queue}
}

type translateRequest struct {
	PostID int64 `json:"post_id"`
}

func (h *TranslateHandler) Translate(c *gin.Context) {
	if !h.cfg.TranslationConfigured() || h.queue == nil {
		response.Error(c, http.StatusForbidden, "translation not configured on this node")
		return
	}
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PostID <= 0 {
		response.Error(c, http.StatusBadRequest, "post_id required")
		return
	}
	if _, err := h.posts.Get(c.Request.Context(), req.PostID); err != nil {
		handleError(c, err)
		return
	}
	queued := h.queue.Enqueue(c.Request.Context(), req.PostID)
	message := "queued"
	if !queued {
		message = "queue full, dropped"
	}
	response.Success(c, gin.H{"post_id": req.PostID, "queued": queued, "message": message})
}
