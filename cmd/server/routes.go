package main

import (
	"github.com/gin-gonic/gin"
	"github.com/itwoqa/bugtracker/internal/middleware"
	"github.com/itwoqa/bugtracker/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for public chat-platform routes
	teamsLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// Screenshots are public static content
	r.Static("/uploads", svc.storage.Dir())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// SSE events (public route with internal token validation)
		api.GET("/events", svc.sseHandler.StreamEvents)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Bugs
			protected.GET("/bugs", svc.bugHandler.List)
			protected.POST("/bugs", svc.bugHandler.Create)
			protected.GET("/bugs/:id", svc.bugHandler.GetByID)
			protected.PUT("/bugs/:id", svc.bugHandler.Update)
			protected.DELETE("/bugs/:id", svc.bugHandler.Delete)

			// Comments
			protected.GET("/bugs/:id/comments", svc.commentHandler.List)
			protected.POST("/bugs/:id/comments", svc.commentHandler.Create)
			protected.PUT("/bugs/:id/comments/:commentId", svc.commentHandler.Update)

			// Uploads and export
			protected.POST("/upload-image", svc.uploadHandler.UploadImage)
			protected.GET("/export/excel", svc.exportHandler.ExportExcel)
		}

		// Chat-platform routes (public, rate limited)
		teams := api.Group("/teams", teamsLimiter.Middleware())
		{
			teams.POST("/messages", svc.teamsHandler.HandleMessages)
			teams.POST("/webhook", svc.teamsHandler.HandleWebhook)
		}
	}
}
