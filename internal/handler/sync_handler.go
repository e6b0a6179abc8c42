package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

type SyncHandler struct {
	receiver *service.Receiver
}

func NewSyncHandler(receiver *service.Receiver) *SyncHandler {
	return &SyncHandler{receiver: receiver}
}

// rawBody decodes the request into the generic map shape signature
// verification needs. Binding into a struct first would lose unknown
// fields and break the canonical form.
func rawBody(c *gin.Context) (map[string]interface{}, bool) {
	data, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "unreadable body")
		return nil, false
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		response.Error(c, http.StatusBadRequest, "body must be a JSON object")
		return nil, false
	}
	return raw, true
}

func (h *SyncHandler) Sync(c *gin.Context) {
	raw, ok := rawBody(c)
	if !ok {
		return
	}
	result, err := h.receiver.HandleSync(c.Request.Context(), raw)
	if err != nil {
		handleError(c, err)
		return
	}
	message := "post updated"
	if action, _ := raw["action"].(string); action == "delete" {
		message = "post deleted"
	} else if result.Created {
		message = "post created"
	}
	response.Success(c, gin.H{
		"target_post_id": result.TargetPostID,
		"created":        result.Created,
		"queued":         result.Queued,
		"message":        message,
	})
}

func (h *SyncHandler) AuthTest(c *gin.Context) {
	raw, ok := rawBody(c)
	if !ok {
		return
	}
	if err := h.receiver.VerifyAuth(c.Request.Context(), raw); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "authentication successful"})
}
