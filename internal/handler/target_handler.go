package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/config"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
	"github.com/hemantwpdev/post-sync-translate/internal/repo"
)

type TargetHandler struct {
	cfg     *config.Config
	targets *repo.TargetRepo
}

func NewTargetHandler(cfg *config.Config, targets *repo.TargetRepo) *TargetHandler {
	return &TargetHandler{cfg: cfg, targets: targets}
}

func (h *TargetHandler) requireHost(c *gin.Context) bool {
	if h.cfg.Role != config.RoleHost {
		response.Error(c, http.StatusForbidden, "target management is a host operation")
		return false
	}
	return true
}

type addTargetRequest struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Add registers a push target. The generated key is returned exactly
// once, here; List never exposes keys.
func (h *TargetHandler) Add(c *gin.Context) {
	if !h.requireHost(c) {
		return
	}
	var req addTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		response.Error(c, http.StatusBadRequest, "url required")
		return
	}
	target, err := h.targets.Add(c.Request.Context(), req.URL, req.Key)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"target": target})
}

func (h *TargetHandler) Remove(c *gin.Context) {
	if !h.requireHost(c) {
		return
	}
	url := c.Query("url")
	if url == "" {
		response.Error(c, http.StatusBadRequest, "url required")
		return
	}
	if err := h.targets.Remove(c.Request.Context(), url); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "target removed"})
}

func (h *TargetHandler) List(c *gin.Context) {
	if !h.requireHost(c) {
		return
	}
	targets, err := h.targets.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(targets))
	for _, target := range targets {
		out = append(out, gin.H{
			"id":       target.ID,
			"url":      target.URL,
			"added_at": target.AddedAt,
		})
	}
	response.Success(c, gin.H{"targets": out})
}
