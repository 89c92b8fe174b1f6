package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler) {
	group := api.Group("/notifications")
	{
		group.GET("", handler.List)
		group.GET("/count", handler.Count)
		group.GET("/stream", handler.Stream)
		group.POST("/read-all", handler.MarkAllRead)
		group.POST("/:id/read", handler.MarkRead)
	}
}
