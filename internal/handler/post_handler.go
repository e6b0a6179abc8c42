package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func (h *PostHandler) Create(c *gin.Context) {
	var input service.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	post, err := h.posts.Create(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"post": post})
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var input service.PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	post, err := h.posts.Update(c.Request.Context(), id, input)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"post": post})
}

func (h *PostHandler) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"post": post})
}

func (h *PostHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	posts, err := h.posts.List(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"posts": posts})
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "post deleted"})
}

// Push re-sends a post to all registered targets and reports the
// per-target tallies.
func (h *PostHandler) Push(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	succeeded, failed, err := h.posts.Push(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"pushed": succeeded, "failed": failed})
}
