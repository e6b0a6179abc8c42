package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

type LogHandler struct {
	logs *repo.AuditRepo
}

func NewLogHandler(logs *repo.AuditRepo) *LogHandler {
	return &LogHandler{logs: logs}
}

func (h *LogHandler) List(c *gin.Context) {
	filter := repo.AuditFilter{
		HostPostID: int64(queryInt(c, "host_post_id", 0)),
		Status:     c.Query("status"),
		Limit:      queryInt(c, "limit", 50),
		Offset:     queryInt(c, "offset", 0),
	}
	entries, err := h.logs.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"logs": entries})
}
