// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/devboom/devboom/internal/config"
	"github.com/devboom/devboom/internal/handler"
	"github.com/devboom/devboom/internal/launch"
	"github.com/devboom/devboom/internal/middleware"
	"github.com/devboom/devboom/internal/service"
	"github.com/devboom/devboom/internal/storage"
	"github.com/devboom/devboom/internal/store"
)

// Deps carries the wired components the handlers need. Dependencies are
// passed explicitly; each handler gets exactly what it uses.
type Deps struct {
	Store       *store.Store
	Launcher    *launch.Launcher
	IconService *service.IconService
	Audit       storage.ResolutionRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	projectHandler := handler.NewProjectHandler(deps.Store, deps.Launcher, cfg.Scan.MaxDepth, logger)
	ideHandler := handler.NewIDEHandler(deps.Store, deps.IconService, logger)
	adminHandler := handler.NewAdminHandler(deps.Store, deps.Audit, logger)

	// Public endpoint, no auth.
	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	api.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	api.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.POST("/projects/scan", projectHandler.Scan)
		api.PUT("/projects/reorder", projectHandler.Reorder)
		api.DELETE("/projects/:id", projectHandler.Delete)
		api.POST("/projects/:id/favorite", projectHandler.ToggleFavorite)
		api.PUT("/projects/:id/preferences", projectHandler.SetPreferences)
		api.POST("/projects/:id/launch", projectHandler.Launch)

		api.GET("/ides", ideHandler.List)
		api.POST("/ides", ideHandler.Create)
		api.POST("/ides/detect", ideHandler.Detect)
		api.DELETE("/ides/:id", ideHandler.Delete)
		api.PUT("/ides/:id/icon", ideHandler.SetIcon)
		api.POST("/ides/:id/icon/refresh", ideHandler.RefreshIcon)

		api.GET("/admin/stats", adminHandler.Stats)
	}
}
