package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/SapotaDA/TaskFlow/internal/api/handlers"
)

// Handlers bundles everything the router needs
type Handlers struct {
	Auth          *handlers.AuthHandler
	Tasks         *handlers.TaskHandler
	Notifications *handlers.NotificationHandler
	Activities    *handlers.ActivityHandler
	AuthRequired  gin.HandlerFunc
}

// Register mounts the API routes
func Register(r *gin.Engine, h Handlers) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", h.AuthRequired, h.Auth.Me)
	}

	tasks := api.Group("/tasks", h.AuthRequired)
	{
		tasks.GET("", h.Tasks.List)
		tasks.POST("", h.Tasks.Create)
		tasks.PUT("/:id", h.Tasks.Update)
		tasks.DELETE("/:id", h.Tasks.Delete)
	}

	notifications := api.Group("/notifications", h.AuthRequired)
	{
		notifications.GET("", h.Notifications.List)
		notifications.GET("/unread-count", h.Notifications.UnreadCount)
		notifications.PATCH("/:id/read", h.Notifications.MarkRead)
		notifications.PATCH("/read-all", h.Notifications.MarkAllRead)
		notifications.DELETE("/:id", h.Notifications.Delete)
	}

	activities := api.Group("/activities", h.AuthRequired)
	{
		activities.GET("", h.Activities.List)
	}
}
