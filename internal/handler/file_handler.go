package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/filestore"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
)

// FileHandler serves stored assets for file stores without a public
// URL of their own, backing the URLs the local store hands out.
type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

func (h *FileHandler) Get(c *gin.Context) {
	if h.store == nil {
		response.Error(c, http.StatusNotFound, "no file store configured")
		return
	}
	key := c.Param("key")
	if key == "" {
		response.Error(c, http.StatusBadRequest, "key required")
		return
	}
	reader, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		handleError(c, err)
		return
	}
	defer reader.Close()
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
