package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/collegehub/internal/handlers"
	"github.com/charlesng35/collegehub/internal/middleware"
	"github.com/charlesng35/collegehub/internal/models"
)

var (
	requireAdmin     = middleware.RequireRole(models.RoleAdmin)
	requireStaff     = middleware.RequireRole(models.RoleStaff)
	requireStudent   = middleware.RequireRole(models.RoleStudent)
	requireApplicant = middleware.RequireRole(models.RoleStudent, models.RoleStaff)
)

func registerLeaveRoutes(api *gin.RouterGroup, handler *handlers.LeaveHandler) {
	leaves := api.Group("/leaves", requireApplicant)
	{
		leaves.POST("", handler.Apply)
		leaves.GET("/mine", handler.ListMine)
	}

	admin := api.Group("/admin/leaves", requireAdmin)
	{
		admin.GET("", handler.ListForReview)
		admin.POST("/:id/decision", handler.Decide)
	}
}

func registerFeedbackRoutes(api *gin.RouterGroup, handler *handlers.FeedbackHandler) {
	feedback := api.Group("/feedback", requireApplicant)
	{
		feedback.POST("", handler.Submit)
		feedback.GET("/mine", handler.ListMine)
	}

	admin := api.Group("/admin/feedback", requireAdmin)
	{
		admin.GET("", handler.ListForReview)
		admin.POST("/:id/reply", handler.Reply)
	}
}

func registerResultRoutes(api *gin.RouterGroup, handler *handlers.ResultHandler) {
	api.POST("/staff/results", requireStaff, handler.Save)
	api.GET("/results/mine", requireStudent, handler.ListMine)
}

func registerHolidayRoutes(api *gin.RouterGroup, handler *handlers.HolidayHandler) {
	api.GET("/holidays", handler.List)

	admin := api.Group("/admin/holidays", requireAdmin)
	{
		admin.POST("", handler.Create)
		admin.DELETE("/:id", handler.Delete)
	}
}

func registerAnnouncementRoutes(api *gin.RouterGroup, handler *handlers.AnnouncementHandler) {
	api.POST("/admin/announcements", requireAdmin, handler.Send)
}
