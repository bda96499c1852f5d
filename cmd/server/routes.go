package main

import (
	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/config"
	"github.com/gitfolio/gitfolio/internal/handlers"
	"github.com/gitfolio/gitfolio/internal/middleware"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiter for unauthenticated routes (login, register, invite
	// token lookups)
	publicLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	healthHandler := handlers.NewHealthHandler()
	r.GET("/health", healthHandler.CheckHealth)

	authHandler := handlers.NewAuthHandler(db, &cfg.JWT)
	orgHandler := handlers.NewOrganizationHandler(db, svc.activityService)
	memberHandler := handlers.NewMemberHandler(db, svc.activityService)
	inviteHandler := handlers.NewInviteHandler(db, cfg, svc.activityService)
	repoHandler := handlers.NewRepositoryHandler(db, svc.activityService)
	followHandler := handlers.NewFollowHandler(db)
	feedHandler := handlers.NewFeedHandler(db, svc.activityService)
	notificationHandler := handlers.NewNotificationHandler(db)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", publicLimiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public browsing
		api.GET("/explore", repoHandler.Explore)
		api.GET("/repositories/:id", middleware.OptionalAuth(), repoHandler.Get)

		// Invite landing routes: the token is the capability. Lookup and
		// decline are public; accept needs a signed-in user. Rate limited
		// against token guessing.
		invites := api.Group("/invites", publicLimiter.Middleware())
		{
			invites.GET("/:token", inviteHandler.Show)
			invites.POST("/:token/decline", inviteHandler.Decline)
			invites.POST("/:token/accept", middleware.AuthRequired(), inviteHandler.Accept)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", authHandler.Me)
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			// Organizations
			protected.GET("/organizations", orgHandler.List)
			protected.POST("/organizations", orgHandler.Create)
			protected.GET("/organizations/:id", orgHandler.Get)
			protected.PUT("/organizations/:id", orgHandler.Update)
			protected.DELETE("/organizations/:id", orgHandler.Delete)
			protected.GET("/organizations/:id/repositories", orgHandler.Repositories)

			// Members
			protected.GET("/organizations/:id/members", memberHandler.List)
			protected.PUT("/organizations/:id/members/:memberID", memberHandler.UpdateRole)
			protected.DELETE("/organizations/:id/members/:memberID", memberHandler.Remove)

			// Invites (organization side)
			protected.GET("/organizations/:id/invites", inviteHandler.ListPending)
			protected.POST("/organizations/:id/invites", inviteHandler.Create)
			protected.DELETE("/organizations/:id/invites/:inviteID", inviteHandler.Cancel)

			// Repositories
			protected.GET("/repositories", repoHandler.List)
			protected.POST("/repositories", repoHandler.Create)
			protected.PUT("/repositories/:id", repoHandler.Update)
			protected.DELETE("/repositories/:id", repoHandler.Delete)
			protected.POST("/repositories/:id/transfer", repoHandler.Transfer)

			// Follow graph
			protected.POST("/users/:id/follow", followHandler.Follow)
			protected.DELETE("/users/:id/follow", followHandler.Unfollow)
			protected.GET("/users/:id/followers", followHandler.Followers)
			protected.GET("/users/:id/following", followHandler.Following)

			// Feed
			protected.GET("/feed", feedHandler.Get)

			// Notifications
			protected.GET("/notifications", notificationHandler.List)
			protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
			protected.POST("/notifications/:id/unread", notificationHandler.MarkUnread)
			protected.DELETE("/notifications/:id", notificationHandler.Delete)
		}
	}
}
