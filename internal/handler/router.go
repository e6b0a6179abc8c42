package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hemantwpdev/post-sync-translate/internal/middleware"
)

type RouterDeps struct {
	Sync      *SyncHandler
	Translate *TranslateHandler
	Auth      *AuthHandler
	Posts     *PostHandler
	Targets   *TargetHandler
	Terms     *TermHandler
	Logs      *LogHandler
	Files     *FileHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	// Signed sync surface, authenticated per request by HMAC.
	api.POST("/sync", deps.Sync.Sync)
	api.POST("/auth-test", deps.Sync.AuthTest)
	api.POST("/translate", deps.Translate.Translate)

	api.POST("/auth/login", middleware.RateLimit(time.Second), deps.Auth.Login)

	admin := api.Group("")
	admin.Use(middleware.JWTAuth(deps.JWTSecret))
	admin.POST("/posts", deps.Posts.Create)
	admin.GET("/posts", deps.Posts.List)
	admin.GET("/posts/:id", deps.Posts.Get)
	admin.PUT("/posts/:id", deps.Posts.Update)
	admin.DELETE("/posts/:id", deps.Posts.Delete)
	admin.POST("/posts/:id/push", deps.Posts.Push)

	admin.GET("/targets", deps.Targets.List)
	admin.POST("/targets", deps.Targets.Add)
	admin.DELETE("/targets", deps.Targets.Remove)

	admin.GET("/terms", deps.Terms.List)

	admin.GET("/logs", deps.Logs.List)

	api.GET("/files/:key", deps.Files.Get)
}
