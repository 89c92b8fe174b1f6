package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/handlers"
)

func registerAuthRoutes(r *gin.Engine, handler *handlers.AuthHandler, loginLimit gin.HandlerFunc) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", loginLimit, handler.Login)
	}
}
