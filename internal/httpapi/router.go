package httpapi

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Token        string
	MaxBodyBytes int64
}

func NewRouter(h *Handler, cfg RouterConfig, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CorrelationID(logger))

	router.GET("/health", h.Health)

	api := router.Group("/", RequireToken(cfg.Token))
	{
		api.POST("/sync", LimitBody(cfg.MaxBodyBytes), h.Sync)
		api.GET("/workspaces/:workspaceID/cursors", h.Cursors)
	}

	return router
}
