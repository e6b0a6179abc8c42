package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/hemantwpdev/post-sync-translate/internal/pkg/errors"
	"github.com/hemantwpdev/post-sync-translate/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalidSignature):
		response.Error(c, http.StatusUnauthorized, appErr.ErrInvalidSignature.Error())
	case errors.Is(err, appErr.ErrNoSharedKey):
		response.Error(c, http.StatusForbidden, appErr.ErrNoSharedKey.Error())
	case errors.Is(err, appErr.ErrRoleMismatch):
		response.Error(c, http.StatusForbidden, appErr.ErrRoleMismatch.Error())
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusBadRequest, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusConflict, "conflict")
	case errors.Is(err, appErr.ErrOracleUnavailable):
		response.Error(c, http.StatusServiceUnavailable, appErr.ErrOracleUnavailable.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "internal error")
	}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
