package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
	"github.com/hemantwpdev/post-sync-translate/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	if req.User == "" || req.Password == "" {
		response.Error(c, http.StatusBadRequest, "user and password required")
		return
	}
	token, err := h.auth.Login(c.Request.Context(), req.User, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"token": token})
}
