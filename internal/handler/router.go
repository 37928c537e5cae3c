package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-scheduler-api/internal/middleware"
	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// Handlers groups the API handlers mounted under the versioned prefix.
type Handlers struct {
	Sessions  *SessionHandler
	Conflicts *ConflictHandler
	Generator *GeneratorHandler
	Imports   *ImportHandler
}

// RegisterRoutes mounts the scheduling API on api. Every route requires auth;
// teachers get read and advisory access only.
func RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc, h Handlers) {
	api.Use(auth, middleware.WithResponseMeta())
	planners := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff)

	sessions := api.Group("/sessions")
	sessions.GET("", h.Sessions.List)
	sessions.GET("/export", h.Sessions.Export)
	sessions.POST("", planners, h.Sessions.Create)
	sessions.PATCH("/:id", planners, h.Sessions.Update)
	sessions.DELETE("/:id", planners, h.Sessions.Delete)

	sessions.POST("/conflicts/check", h.Conflicts.Check)
	sessions.POST("/conflicts/batch", h.Conflicts.Batch)
	sessions.POST("/suggestions", h.Conflicts.Suggestions)

	sessions.POST("/generate", planners, h.Generator.Generate)
	sessions.POST("/import/preview", planners, h.Imports.Preview)

	api.GET("/classes/:id/participants", h.Sessions.Participants)
}
