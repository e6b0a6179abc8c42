package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The sync wire protocol is fixed: every JSON body carries a "success"
// flag, failures additionally carry a human readable "message".

func Success(c *gin.Context, data gin.H) {
	out := gin.H{"success": true}
	for k, v := range data {
		out[k] = v
	}
	c.JSON(http.StatusOK, out)
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
